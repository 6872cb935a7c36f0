// Package retry provides the client-side retry and admission-control
// machinery for an RPC client: per-attempt admission decisions, backoff
// selection, and a shared token-bucket capacity that bounds how much
// retry traffic a client generates against a degraded service.
//
// The main components include:
//
// - Capacity: lock-free, bounded-refill token bucket
// - RetryMode: named default profiles (Legacy, Standard)
// - BackoffStrategy: full-jitter exponential delay selection
// - RetryCondition: composable retry predicates
// - RequestCapacity: admission control bound to a Capacity
// - Policy: immutable bundle of the above, shared by every request
// - Driver: per-request state machine that drives a sequence of attempts
//
// Transport, request signing, and credentials are out of scope; callers
// supply an AttemptExecutor and a FailureClassifier and the package
// handles only the decision of whether/when/how often to retry.
package retry

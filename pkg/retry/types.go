package retry

import "time"

// FailureKind classifies a Failure. Classification itself is performed by
// an external FailureClassifier from the wire response or transport
// exception; the core only consumes the result.
type FailureKind int

const (
	// FailureUnknown is the zero value: no failure has occurred yet.
	FailureUnknown FailureKind = iota
	FailureNetworkIO
	FailureServiceThrottling
	FailureServiceTransient
	FailureServiceNonRetryable
	FailureClientNonRetryable
	FailureCapacityExceeded
)

func (k FailureKind) String() string {
	switch k {
	case FailureNetworkIO:
		return "NETWORK_IO"
	case FailureServiceThrottling:
		return "SERVICE_THROTTLING"
	case FailureServiceTransient:
		return "SERVICE_TRANSIENT"
	case FailureServiceNonRetryable:
		return "SERVICE_NON_RETRYABLE"
	case FailureClientNonRetryable:
		return "CLIENT_NON_RETRYABLE"
	case FailureCapacityExceeded:
		return "CAPACITY_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// Failure is the tagged outcome of a dispatched attempt, produced by the
// external AttemptExecutor/FailureClassifier pair. The core treats it as
// opaque aside from the classification predicates below.
type Failure struct {
	Kind       FailureKind
	StatusCode int    // wire status code, 0 if not applicable
	ErrorCode  string // service-modeled error code, "" if not applicable
	Err        error  // underlying transport/service error, may be nil
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return f.Kind.String()
}

// IsThrottling reports whether f represents a server-side throttling
// signal. A nil Failure is never throttling.
func IsThrottling(f *Failure) bool {
	return f != nil && f.Kind == FailureServiceThrottling
}

// IsRetryable reports whether f is a kind the core will ever retry,
// independent of attempt budget or capacity. CAPACITY_EXCEEDED and the
// two non-retryable kinds are excluded.
func IsRetryable(f *Failure) bool {
	if f == nil {
		return false
	}
	switch f.Kind {
	case FailureNetworkIO, FailureServiceThrottling, FailureServiceTransient:
		return true
	default:
		return false
	}
}

// IsNonRetryable reports whether f is one of the two non-retryable kinds,
// which the driver uses to short-circuit without consulting the retry
// condition at all. It is not the complement of IsRetryable:
// FailureUnknown and FailureCapacityExceeded satisfy neither predicate.
func IsNonRetryable(f *Failure) bool {
	if f == nil {
		return false
	}
	return f.Kind == FailureServiceNonRetryable || f.Kind == FailureClientNonRetryable
}

// attributeKey namespaces AttemptContext's side-channel so components
// don't collide on plain strings.
type attributeKey string

// lastAcquiredKey is where RequestCapacity stashes the amount it
// acquired for the current attempt, consumed by its own
// RequestSucceeded hook. Declared as a named (unexported) constant, not a
// literal, so any component inspecting AttemptContext.Attributes agrees on the
// key, per spec §9's "ambient mutable state -> explicit injection" note.
const lastAcquiredKey attributeKey = "retry.last_acquired_capacity"

// remainingAfterAdmissionKey is where RequestCapacity stashes the
// bucket's remaining capacity as observed at the moment admission was
// decided for the current attempt, so the driver can report it in the
// retry-info header without taking a second, possibly stale, reading
// after backoff and dispatch (spec §6).
const remainingAfterAdmissionKey attributeKey = "retry.remaining_after_admission"

// AttemptContext carries per-attempt state between the driver and the
// policy components it drives. It is created before attempt 1, mutated
// only by the driver (components may only read it except through the
// documented Attributes side-channel), and discarded when the request
// terminates. It is never shared across concurrent requests.
type AttemptContext struct {
	// AttemptNumber is 1-based; attempt 1 is the initial try.
	AttemptNumber int

	// LastFailure is nil until the first attempt completes with a
	// failure.
	LastFailure *Failure

	// LastBackoffDelay is the delay computed (and slept) before the
	// current attempt; zero for attempt 1.
	LastBackoffDelay time.Duration

	// Attributes is a scoped side-channel for components to stash
	// per-execution data. Keys are unexported attributeKey values;
	// callers outside this package should not depend on specific keys.
	Attributes map[attributeKey]any
}

// newAttemptContext starts the per-request state at attempt 0; Driver
// advances it to 1 before the first attempt.
func newAttemptContext() *AttemptContext {
	return &AttemptContext{Attributes: make(map[attributeKey]any)}
}

// NewAttemptContext builds a standalone AttemptContext, for callers
// outside this package that need to drive individual RetryCondition or
// RequestCapacity decisions without a full Driver — e.g. the
// pkg/retry/awscompat adapter, whose calls from aws.RetryerV2 arrive
// independently rather than through Driver's own loop.
func NewAttemptContext(attemptNumber int, lastFailure *Failure) *AttemptContext {
	return &AttemptContext{
		AttemptNumber: attemptNumber,
		LastFailure:   lastFailure,
		Attributes:    make(map[attributeKey]any),
	}
}

// RetriesAttempted is max(0, AttemptNumber-1): the value MaxNumberOfRetries
// compares against, per spec §4.8.
func (c *AttemptContext) RetriesAttempted() int {
	if c.AttemptNumber <= 1 {
		return 0
	}
	return c.AttemptNumber - 1
}

func (c *AttemptContext) setLastAcquired(n int) {
	c.Attributes[lastAcquiredKey] = n
}

func (c *AttemptContext) lastAcquired() (int, bool) {
	v, ok := c.Attributes[lastAcquiredKey]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

func (c *AttemptContext) setRemainingAfterAdmission(n int) {
	c.Attributes[remainingAfterAdmissionKey] = n
}

func (c *AttemptContext) remainingAfterAdmission() (int, bool) {
	v, ok := c.Attributes[remainingAfterAdmissionKey]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

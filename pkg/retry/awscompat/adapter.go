// Package awscompat adapts a retry.Policy into aws-sdk-go-v2's
// aws.RetryerV2 interface, so the same admission-control and backoff
// machinery driving this module's own Driver can also be handed
// straight to a real AWS SDK v2 service client's Retryer field. This is
// additive to spec.md: the core defines its own AttemptDriver/
// AttemptExecutor pair, and this package is a second, richer front end
// over the same Policy, grounded on the real retry.Standard shape
// vendored into the pack (other_examples' aws-sdk-go-v2/aws/retry
// files).
package awscompat

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/coreclient/rpcretry/pkg/retry"
)

// retryerAdapter implements aws.RetryerV2 on top of a retry.Policy.
type retryerAdapter struct {
	policy     *retry.Policy
	classifier retry.FailureClassifier
}

var _ aws.RetryerV2 = (*retryerAdapter)(nil)

// Option customizes Adapt.
type Option func(*retryerAdapter)

// WithClassifier overrides the FailureClassifier used to turn the
// opErr the SDK hands back into a retry.Failure for admission and
// backoff decisions. Defaults to retry.NewDefaultClassifier().
func WithClassifier(c retry.FailureClassifier) Option {
	return func(a *retryerAdapter) { a.classifier = c }
}

// Adapt wraps policy as an aws.RetryerV2, suitable for assignment to
// aws.Config.Retryer via a RetryerProvider closure:
//
//	cfg.Retryer = func() aws.Retryer { return awscompat.Adapt(policy) }
func Adapt(policy *retry.Policy, opts ...Option) aws.RetryerV2 {
	a := &retryerAdapter{policy: policy, classifier: retry.NewDefaultClassifier()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxAttempts returns the total attempt budget (retries + the initial
// try).
func (a *retryerAdapter) MaxAttempts() int {
	return a.policy.NumRetries() + 1
}

// IsErrorRetryable classifies opErr without regard to attempt budget or
// capacity, matching aws.Retryer's contract.
func (a *retryerAdapter) IsErrorRetryable(opErr error) bool {
	f := a.classifier.Classify(0, opErr)
	return retry.IsRetryable(f)
}

// RetryDelay returns the backoff delay for the given 0-based attempt
// count, selecting the throttling or default strategy from the last
// error's classification.
func (a *retryerAdapter) RetryDelay(attempt int, opErr error) (time.Duration, error) {
	f := a.classifier.Classify(0, opErr)
	actx := attemptContext(attempt+1, f)
	return a.policy.SelectBackoff(f).ComputeDelayBeforeNextRetry(actx), nil
}

// GetInitialToken returns the release function for a first attempt: on
// success it credits the bucket by 1, per retry.RequestCapacity's
// retry-free-success rule.
func (a *retryerAdapter) GetInitialToken() func(error) error {
	return a.release(attemptContext(1, nil))
}

// GetAttemptToken mirrors the vendored Standard retryer: every attempt,
// including the first, is a no-cost admission (the real per-retry cost
// is charged through GetRetryToken instead).
func (a *retryerAdapter) GetAttemptToken(context.Context) (func(error) error, error) {
	return a.GetInitialToken(), nil
}

// GetRetryToken attempts to deduct the retry cost implied by opErr from
// the policy's capacity, returning the release function or a
// CAPACITY_EXCEEDED error.
func (a *retryerAdapter) GetRetryToken(ctx context.Context, opErr error) (func(error) error, error) {
	f := a.classifier.Classify(0, opErr)
	actx := attemptContext(2, f) // AttemptNumber > 1 so admission actually charges.
	if !a.policy.Capacity().ShouldAttemptRequest(actx) {
		return nil, &retry.Error{
			Code:    retry.CodeCapacityExceeded,
			Message: "insufficient retry capacity to attempt request",
			Type:    "capacity_error",
			Cause:   opErr,
		}
	}
	return a.release(actx), nil
}

func (a *retryerAdapter) release(actx *retry.AttemptContext) func(error) error {
	return func(err error) error {
		if err != nil {
			return nil
		}
		a.policy.Capacity().RequestSucceeded(actx)
		return nil
	}
}

// attemptContext builds a standalone AttemptContext for one adapter
// call; aws.RetryerV2 calls are independent of each other (the SDK
// manages the request loop itself), so there is no shared Driver state
// to reuse across these calls the way there is inside retry.Driver.
func attemptContext(attemptNumber int, f *retry.Failure) *retry.AttemptContext {
	return retry.NewAttemptContext(attemptNumber, f)
}

package retry

import (
	"context"
	"net/http"
	"time"

	"github.com/coreclient/rpcretry/internal/rlog"
)

// Driver is the per-request state machine described in spec §4.8: it
// composes a Policy's RequestCapacity, RetryCondition, and
// BackoffStrategy across a sequence of attempts against an
// AttemptExecutor, exposing the retry-info header and reporting the
// terminal outcome.
//
// A Driver is built fresh for each request; it is not safe to reuse
// across concurrent requests (its AttemptContext is not shared), though
// many Drivers built from the same Policy run concurrently and share
// that Policy's Capacity.
type Driver struct {
	policy     *Policy
	executor   AttemptExecutor
	classifier FailureClassifier
	skew       ClockSkewAdjuster
	sleep      func(context.Context, time.Duration) error

	invocationID string
}

// DriverOption customizes NewDriver.
type DriverOption func(*Driver)

// WithClassifier overrides the FailureClassifier used to turn a
// dispatched attempt's status code/error into a Failure. Defaults to
// NewDefaultClassifier().
func WithClassifier(c FailureClassifier) DriverOption {
	return func(d *Driver) { d.classifier = c }
}

// WithClockSkewAdjuster overrides the clock-skew collaborator (spec
// §4.8 step 6). Defaults to NoopClockSkewAdjuster.
func WithClockSkewAdjuster(a ClockSkewAdjuster) DriverOption {
	return func(d *Driver) { d.skew = a }
}

// NewDriver builds a Driver bound to one Policy and AttemptExecutor. The
// Policy is typically shared by every request a client issues; the
// Driver itself is per-request.
func NewDriver(policy *Policy, executor AttemptExecutor, opts ...DriverOption) *Driver {
	d := &Driver{
		policy:       policy,
		executor:     executor,
		classifier:   NewDefaultClassifier(),
		skew:         NoopClockSkewAdjuster{},
		sleep:        sleepWithContext,
		invocationID: NewInvocationID(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Do drives req through the full attempt sequence: admission, backoff,
// dispatch, classification, and retry decision, per spec §4.8's state
// machine (INIT -> ATTEMPTING -> {AWAITING_RESULT -> EVALUATING ->
// {BACKING_OFF -> ATTEMPTING | DONE_SUCCESS | DONE_FAILURE}}).
func (d *Driver) Do(ctx context.Context, req *http.Request) (*Response, error) {
	actx := newAttemptContext()
	log := rlog.Logger()

	for {
		// 1. Start attempt.
		actx.AttemptNumber++
		log.Debug().Int("attempt", actx.AttemptNumber).Msg("retry: starting attempt")

		// 2. Admission.
		if !d.policy.Capacity().ShouldAttemptRequest(actx) {
			log.Warn().Int("attempt", actx.AttemptNumber).Msg("retry: admission rejected, capacity exceeded")
			capFailure := &Failure{Kind: FailureCapacityExceeded, Err: actx.LastFailure}
			actx.LastFailure = capFailure
			return nil, capacityExceeded(capFailure)
		}
		remaining, hasBucket := d.remainingCapacity(actx)

		// 3. Backoff.
		if actx.AttemptNumber > 1 {
			backoff := d.policy.SelectBackoff(actx.LastFailure)
			delay := backoff.ComputeDelayBeforeNextRetry(actx)
			actx.LastBackoffDelay = delay
			log.Debug().Int("attempt", actx.AttemptNumber).Dur("delay", delay).Msg("retry: backing off")
			if err := d.sleep(ctx, delay); err != nil {
				ReleaseAcquired(d.policy.Capacity(), actx)
				return nil, cancelled(err)
			}
		} else {
			actx.LastBackoffDelay = 0
		}

		// 4. Augment request.
		req.Header.Set(HeaderInvocationID, d.invocationID)
		req.Header.Set(HeaderRetryInfo, RetryInfoHeader(actx, remaining, hasBucket))

		// 5. Execute.
		resp, execErr := d.executor.Execute(ctx, req)
		if ctx.Err() != nil {
			ReleaseAcquired(d.policy.Capacity(), actx)
			return nil, cancelled(ctx.Err())
		}
		if resp == nil && execErr == nil {
			ReleaseAcquired(d.policy.Capacity(), actx)
			return nil, clientFault(nil)
		}

		// 6. Clock-skew adjustment.
		d.skew.AdjustForResponse(resp, execErr)

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		failure := d.classifier.Classify(statusCode, execErr)

		// 7. On success.
		if failure == nil {
			log.Debug().Int("attempt", actx.AttemptNumber).Msg("retry: attempt succeeded")
			d.policy.Capacity().RequestSucceeded(actx)
			d.policy.AggregateRetryCondition().RequestSucceeded(actx)
			return resp, nil
		}

		// 8. On failure.
		actx.LastFailure = failure
		if IsNonRetryable(failure) {
			log.Warn().Int("attempt", actx.AttemptNumber).Str("kind", failure.Kind.String()).Msg("retry: terminal non-retryable failure")
			return nil, failure
		}
		if !d.policy.AggregateRetryCondition().ShouldRetry(actx) {
			log.Warn().Int("attempt", actx.AttemptNumber).Str("kind", failure.Kind.String()).Msg("retry: exhausted, surfacing last failure")
			return nil, failure
		}
		// loop back to (1)
	}
}

// remainingCapacity reports the bucket's remaining capacity as observed
// by ShouldAttemptRequest at admission time for the current attempt
// (spec §6), not a fresh reading taken after backoff: concurrent
// requests sharing the same bucket may have mutated it by then.
func (d *Driver) remainingCapacity(actx *AttemptContext) (remaining int, hasBucket bool) {
	if Bucket(d.policy.Capacity()) == nil {
		return 0, false
	}
	n, ok := actx.remainingAfterAdmission()
	if !ok {
		return 0, false
	}
	return n, true
}

// sleepWithContext suspends for delay or until ctx is cancelled,
// whichever comes first, satisfying spec §5's "cancellable" suspension
// point contract.
func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

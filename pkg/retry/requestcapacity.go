package retry

// RequestCapacity is the admission-control policy, independent of retry
// classification: it decides whether an attempt may even be dispatched,
// and it is notified on success so it can refill. spec §4.6.
type RequestCapacity interface {
	ShouldAttemptRequest(ctx *AttemptContext) bool
	RequestSucceeded(ctx *AttemptContext)
}

// unlimitedCapacity always admits and never touches a bucket.
type unlimitedCapacity struct{}

// UnlimitedCapacity returns the no-op RequestCapacity variant.
func UnlimitedCapacity() RequestCapacity { return unlimitedCapacity{} }

func (unlimitedCapacity) ShouldAttemptRequest(*AttemptContext) bool { return true }
func (unlimitedCapacity) RequestSucceeded(*AttemptContext)          {}

// tokenBucketCapacity is the default RequestCapacity: attempt 1 is free;
// every later attempt pays costCalculator.Cost(lastFailure) out of a
// shared Capacity.
type tokenBucketCapacity struct {
	bucket *Capacity
	cost   costCalculator
}

// NewTokenBucketCapacity binds a Capacity and a cost function into a
// RequestCapacity. The Capacity is exclusively owned by the returned
// RequestCapacity (spec §3's relationship invariant).
func NewTokenBucketCapacity(bucket *Capacity, mode Mode) RequestCapacity {
	return &tokenBucketCapacity{bucket: bucket, cost: newCostCalculator(mode)}
}

func (c *tokenBucketCapacity) ShouldAttemptRequest(ctx *AttemptContext) bool {
	if ctx.AttemptNumber <= 1 {
		// First attempts are free: bucket state is untouched. spec §4.6 (i).
		ctx.setRemainingAfterAdmission(c.bucket.CurrentCapacity())
		return true
	}

	cost := c.cost.Cost(ctx.LastFailure)
	acq, ok, err := c.bucket.TryAcquire(cost)
	if err != nil || !ok {
		return false
	}
	ctx.setLastAcquired(acq.Acquired)
	ctx.setRemainingAfterAdmission(acq.Remaining)
	return true
}

func (c *tokenBucketCapacity) RequestSucceeded(ctx *AttemptContext) {
	acquired, ok := ctx.lastAcquired()
	if !ok || acquired == 0 {
		// A retry-free success (or a success following an attempt that
		// never drew from the bucket) credits the bucket by 1, saturating
		// at max. spec §4.6.
		_ = c.bucket.Release(1)
		return
	}
	_ = c.bucket.Release(acquired)
}

// Bucket exposes the underlying Capacity, e.g. so a Driver can report
// remaining capacity in the retry-info header (spec §6). Returns nil for
// UnlimitedCapacity.
func Bucket(rc RequestCapacity) *Capacity {
	if tb, ok := rc.(*tokenBucketCapacity); ok {
		return tb.bucket
	}
	return nil
}

// ReleaseAcquired returns ctx's admission-time acquisition to rc without
// applying RequestSucceeded's "retry-free success credits 1" rule: used
// when an in-flight attempt is abandoned (e.g. context cancellation)
// rather than completed, so a cost-free attempt must release nothing at
// all, per spec §5's "any acquired capacity for the in-flight attempt is
// released back exactly once" cancellation contract.
func ReleaseAcquired(rc RequestCapacity, ctx *AttemptContext) {
	tb, ok := rc.(*tokenBucketCapacity)
	if !ok {
		return
	}
	acquired, ok := ctx.lastAcquired()
	if !ok || acquired == 0 {
		return
	}
	_ = tb.bucket.Release(acquired)
	ctx.setLastAcquired(0)
}

// capacityCondition adapts a RequestCapacity into the RetryCondition
// interface so NewPolicy can append it last inside And(), per spec
// §4.5's ordering policy: the capacity condition must be evaluated after
// every other retry condition so it never spends a token on an attempt
// some unrelated condition would have refused anyway.
type capacityCondition struct {
	capacity RequestCapacity
}

func (c capacityCondition) ShouldRetry(ctx *AttemptContext) bool {
	return c.capacity.ShouldAttemptRequest(ctx)
}

func (c capacityCondition) RequestSucceeded(ctx *AttemptContext) {
	c.capacity.RequestSucceeded(ctx)
}

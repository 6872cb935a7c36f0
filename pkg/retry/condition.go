package retry

// RetryCondition is a predicate over an attempt context, plus a success
// hook, per spec §4.5. The set of implementations is closed — And,
// MaxNumberOfRetries, DefaultClassifier, Never, and the capacity-backed
// condition in requestcapacity.go — so this is a plain interface rather
// than anything built for open-ended extension (spec §9: "do not use
// inheritance: the set is closed").
type RetryCondition interface {
	ShouldRetry(ctx *AttemptContext) bool
	RequestSucceeded(ctx *AttemptContext)
}

// neverCondition always rejects. Used by Policy.None().
type neverCondition struct{}

func (neverCondition) ShouldRetry(*AttemptContext) bool    { return false }
func (neverCondition) RequestSucceeded(*AttemptContext)    {}

// Never returns the RetryCondition that never retries.
func Never() RetryCondition { return neverCondition{} }

// maxRetriesCondition is true iff retriesAttempted < n.
type maxRetriesCondition struct {
	n int
}

// MaxNumberOfRetries returns a RetryCondition true while fewer than n
// retries have been attempted.
func MaxNumberOfRetries(n int) RetryCondition {
	return maxRetriesCondition{n: n}
}

func (m maxRetriesCondition) ShouldRetry(ctx *AttemptContext) bool {
	return ctx.RetriesAttempted() < m.n
}

func (maxRetriesCondition) RequestSucceeded(*AttemptContext) {}

// classifierCondition delegates to a FailureClassifier's own retryable
// classification of the last failure's kind, implementing spec §4.5's
// DefaultClassifier member: NETWORK_IO / SERVICE_THROTTLING /
// SERVICE_TRANSIENT, or a recognized status/error code, are retryable.
type classifierCondition struct{}

// DefaultClassifierCondition returns the RetryCondition member that
// consults IsRetryable on the context's last failure. The classification
// itself (turning a status code / error into a Failure kind) is the job
// of a FailureClassifier (see classifier.go); this condition only
// interprets the resulting Failure.
func DefaultClassifierCondition() RetryCondition {
	return classifierCondition{}
}

func (classifierCondition) ShouldRetry(ctx *AttemptContext) bool {
	return IsRetryable(ctx.LastFailure)
}

func (classifierCondition) RequestSucceeded(*AttemptContext) {}

// andCondition is a short-circuit conjunction that preserves evaluation
// order and forwards RequestSucceeded to every member, per spec §4.5.
type andCondition struct {
	members []RetryCondition
}

// And composes conditions with short-circuit AND semantics. Per spec
// §4.5's ordering policy, a capacity-backed condition passed to And must
// be placed last — evaluating it earlier would spend tokens on attempts
// some other condition would have rejected anyway. NewPolicy enforces
// this by always appending the capacity condition itself.
func And(conditions ...RetryCondition) RetryCondition {
	return andCondition{members: conditions}
}

func (a andCondition) ShouldRetry(ctx *AttemptContext) bool {
	for _, c := range a.members {
		if !c.ShouldRetry(ctx) {
			return false
		}
	}
	return true
}

func (a andCondition) RequestSucceeded(ctx *AttemptContext) {
	for _, c := range a.members {
		c.RequestSucceeded(ctx)
	}
}

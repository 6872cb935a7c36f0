package retry

// Policy is the immutable bundle every concurrent AttemptDriver of one
// client shares read-only: the retry condition, both backoff variants,
// and the capacity binding. Constructed once per client via NewPolicy;
// equality is not derived (spec's "equal iff same decisions" note is
// satisfied structurally here since a Policy is never mutated after
// construction and callers share the pointer rather than copying it).
type Policy struct {
	numRetries        int
	retryCondition    RetryCondition
	aggregateRetry    RetryCondition
	backoff           BackoffStrategy
	throttlingBackoff BackoffStrategy
	capacity          RequestCapacity
	mode              Mode
}

// PolicyOption customizes NewPolicy's construction.
type PolicyOption func(*policyBuild) error

type policyBuild struct {
	numRetries        *int
	retryCondition    RetryCondition
	backoff           BackoffStrategy
	throttlingBackoff BackoffStrategy
	capacity          RequestCapacity
	mode              Mode
	bundleCapacity    bool
	legacyShape       bool
}

// WithMode selects the RetryMode whose defaults seed every field not
// explicitly overridden by another option.
func WithMode(m Mode) PolicyOption {
	return func(b *policyBuild) error {
		b.mode = m
		return nil
	}
}

// WithNumRetries overrides the retry budget the mode would otherwise
// supply.
func WithNumRetries(n int) PolicyOption {
	return func(b *policyBuild) error {
		b.numRetries = &n
		return nil
	}
}

// WithRetryCondition overrides the user-supplied member of the
// aggregate retry condition (MaxNumberOfRetries is always ANDed in
// ahead of it by NewPolicy).
func WithRetryCondition(c RetryCondition) PolicyOption {
	return func(b *policyBuild) error {
		b.retryCondition = c
		return nil
	}
}

// WithBackoff overrides the default (non-throttling) backoff strategy.
func WithBackoff(s BackoffStrategy) PolicyOption {
	return func(b *policyBuild) error {
		b.backoff = s
		return nil
	}
}

// WithThrottlingBackoff overrides the throttling backoff strategy.
func WithThrottlingBackoff(s BackoffStrategy) PolicyOption {
	return func(b *policyBuild) error {
		b.throttlingBackoff = s
		return nil
	}
}

// WithCapacity overrides the RequestCapacity the mode would otherwise
// build (a token bucket sized per Mode.defaultBucketSize).
func WithCapacity(c RequestCapacity) PolicyOption {
	return func(b *policyBuild) error {
		b.capacity = c
		return nil
	}
}

// WithCapacityBundledInRetryCondition also ANDs the capacity condition
// into the aggregate retry condition evaluated in AttemptDriver step 8,
// in addition to the unconditional admission check the driver always
// performs in step 2. Per spec §4.5's ordering policy, NewPolicy always
// places it last regardless of when this option is applied.
func WithCapacityBundledInRetryCondition() PolicyOption {
	return func(b *policyBuild) error {
		b.bundleCapacity = true
		return nil
	}
}

// withLegacyOutageCompensation exists only so NewPolicy can detect and
// reject the source's older policy shape, per spec §9's resolved Open
// Question: this module exposes only the newer separate-RequestCapacity
// shape and rejects a builder that also sets the legacy flag.
func withLegacyOutageCompensation() PolicyOption {
	return func(b *policyBuild) error {
		b.legacyShape = true
		return nil
	}
}

// NewPolicy assembles a Policy. Defaults for numRetries and capacity
// derive from mode (or from WithMode, when given); the backoff strategies
// default to NewDefaultBackoff and NewThrottlingBackoff for every mode.
// Any of these can be overridden by an option; see spec §4.3/§4.7.
func NewPolicy(mode Mode, opts ...PolicyOption) (*Policy, error) {
	b := &policyBuild{mode: mode}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	mode = b.mode

	if b.legacyShape && (b.capacity != nil || b.bundleCapacity) {
		return nil, invalidConfig("retry: cannot mix the legacy outageCompensation shape with an explicit RequestCapacity")
	}

	numRetries := mode.defaultNumRetries()
	if b.numRetries != nil {
		numRetries = *b.numRetries
	}

	capacity := b.capacity
	if capacity == nil {
		capacity = NewTokenBucketCapacity(NewCapacity(mode.defaultBucketSize()), mode)
	}

	userCondition := b.retryCondition
	if userCondition == nil {
		userCondition = DefaultClassifierCondition()
	}

	members := []RetryCondition{MaxNumberOfRetries(numRetries), userCondition}
	if b.bundleCapacity {
		// Ordering policy: capacity-backed condition goes last.
		members = append(members, capacityCondition{capacity: capacity})
	}

	backoff := b.backoff
	if backoff == nil {
		backoff = NewDefaultBackoff()
	}
	throttlingBackoff := b.throttlingBackoff
	if throttlingBackoff == nil {
		throttlingBackoff = NewThrottlingBackoff()
	}

	return &Policy{
		numRetries:        numRetries,
		retryCondition:    userCondition,
		aggregateRetry:    And(members...),
		backoff:           backoff,
		throttlingBackoff: throttlingBackoff,
		capacity:          capacity,
		mode:              mode,
	}, nil
}

// NonePolicy returns the degenerate policy: no retries, zero backoffs,
// Never condition, unlimited capacity. Matches spec §4.7's none().
func NonePolicy() *Policy {
	return &Policy{
		numRetries:        0,
		retryCondition:    Never(),
		aggregateRetry:    Never(),
		backoff:           NoBackoff{},
		throttlingBackoff: NoBackoff{},
		capacity:          UnlimitedCapacity(),
		mode:              ModeLegacy,
	}
}

// Capacity returns the policy's RequestCapacity binding.
func (p *Policy) Capacity() RequestCapacity { return p.capacity }

// AggregateRetryCondition returns And(MaxNumberOfRetries(numRetries),
// userCondition[, capacityCondition]).
func (p *Policy) AggregateRetryCondition() RetryCondition { return p.aggregateRetry }

// SelectBackoff returns the throttling or default BackoffStrategy for
// the given last failure.
func (p *Policy) SelectBackoff(lastFailure *Failure) BackoffStrategy {
	return selectBackoff(p.backoff, p.throttlingBackoff, lastFailure)
}

// NumRetries returns the configured retry budget.
func (p *Policy) NumRetries() int { return p.numRetries }

// Mode returns the RetryMode this policy was built from.
func (p *Policy) Mode() Mode { return p.mode }

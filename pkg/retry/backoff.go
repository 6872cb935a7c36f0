package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy computes the delay before the next attempt. rand/v2's
// package-level generator is the randomness source for the jittered
// variants below; it is documented here per spec §9's requirement that
// implementers name their RNG, and it is safe for concurrent use without
// any lock this package would otherwise need to hold.
type BackoffStrategy interface {
	ComputeDelayBeforeNextRetry(ctx *AttemptContext) time.Duration
}

// NoBackoff always returns zero delay.
type NoBackoff struct{}

func (NoBackoff) ComputeDelayBeforeNextRetry(*AttemptContext) time.Duration { return 0 }

// fullJitterBackoff implements delay = rand(0, min(cap, base*2^retries)),
// uniform over [0, ceiling] inclusive, per spec §4.4.
type fullJitterBackoff struct {
	base time.Duration
	cap  time.Duration
}

// NewDefaultBackoff returns the default full-jitter exponential backoff:
// base 100ms, cap 20s.
func NewDefaultBackoff() BackoffStrategy {
	return fullJitterBackoff{base: 100 * time.Millisecond, cap: 20 * time.Second}
}

// NewThrottlingBackoff returns the throttling variant of full-jitter
// exponential backoff: base 500ms, cap 20s.
func NewThrottlingBackoff() BackoffStrategy {
	return fullJitterBackoff{base: 500 * time.Millisecond, cap: 20 * time.Second}
}

func (b fullJitterBackoff) ComputeDelayBeforeNextRetry(ctx *AttemptContext) time.Duration {
	retriesAttempted := ctx.RetriesAttempted()

	ceiling := b.ceiling(retriesAttempted)
	if ceiling <= 0 {
		return 0
	}
	// rand.Int64N panics on n<=0 and is exclusive of the upper bound, so
	// add one to make [0, ceiling] inclusive as the spec requires.
	n := int64(ceiling) + 1
	return time.Duration(rand.Int64N(n))
}

func (b fullJitterBackoff) ceiling(retriesAttempted int) time.Duration {
	if retriesAttempted < 0 {
		retriesAttempted = 0
	}
	// Guard against overflow for pathologically large retry counts; the
	// cap makes the exact exponent irrelevant once it's exceeded it.
	const maxSafeShift = 30
	shift := retriesAttempted
	if shift > maxSafeShift {
		shift = maxSafeShift
	}
	scaled := float64(b.base) * math.Pow(2, float64(shift))
	if scaled >= float64(b.cap) || scaled < 0 {
		return b.cap
	}
	return time.Duration(scaled)
}

// selectBackoff picks the throttling or default strategy per spec §4.4:
// "The policy uses the throttling variant when the last failure is
// classified throttling; otherwise the default."
func selectBackoff(defaultBackoff, throttlingBackoff BackoffStrategy, lastFailure *Failure) BackoffStrategy {
	if IsThrottling(lastFailure) {
		return throttlingBackoff
	}
	return defaultBackoff
}

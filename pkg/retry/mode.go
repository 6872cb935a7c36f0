package retry

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// Mode selects the defaults for numRetries, the ExceptionCostCalculator,
// and bucket size. It is a closed enumeration: Legacy and Standard only
// (spec §4.3 explicitly excludes Adaptive from this subsystem's scope).
type Mode int

const (
	ModeLegacy Mode = iota
	ModeStandard
)

func (m Mode) String() string {
	if m == ModeStandard {
		return "standard"
	}
	return "legacy"
}

// defaultNumRetries returns the attempt budget's retry count (total
// attempts minus one) for m, per spec §4.3: Legacy = 4 total attempts (3
// retries); Standard = 3 total attempts (2 retries).
func (m Mode) defaultNumRetries() int {
	if m == ModeStandard {
		return 2
	}
	return 3
}

// defaultBucketSize returns the token-bucket ceiling associated with m.
// 500 matches the real AWS SDK's DefaultRetryRateTokens, the value the
// property tests in spec §8 scenario 4 assume.
func (m Mode) defaultBucketSize() int {
	return 500
}

const envRetryMode = "AWS_RETRY_MODE"

var (
	cachedModeOnce sync.Once
	cachedMode     Mode
)

// ResolveMode resolves the default Mode once from the environment and
// caches it for the process lifetime, per spec §9's "singleton
// defaults" design note. Use ResolveModeUncached in tests that need to
// observe a changed environment within one process.
func ResolveMode(ctx context.Context, profile string) (Mode, error) {
	var resolveErr error
	cachedModeOnce.Do(func() {
		cachedMode, resolveErr = ResolveModeUncached(ctx, profile)
	})
	return cachedMode, resolveErr
}

// ResolveModeUncached performs the full (1) env var, (2) profile file,
// (3) Legacy-fallback resolution described in spec §4.3/§6 without
// touching the process-wide cache.
func ResolveModeUncached(ctx context.Context, profile string) (Mode, error) {
	if v := os.Getenv(envRetryMode); v != "" {
		return parseMode(v)
	}

	if profile != "" {
		shared, err := awsconfig.LoadSharedConfigProfile(ctx, profile)
		if err == nil && shared.RetryMode != "" {
			return parseMode(string(shared.RetryMode))
		}
	}

	return ModeLegacy, nil
}

func parseMode(v string) (Mode, error) {
	awsMode, err := aws.ParseRetryMode(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return ModeLegacy, invalidConfig("retry: unrecognized retry mode " + v)
	}
	switch awsMode {
	case aws.RetryModeStandard:
		return ModeStandard, nil
	case aws.RetryModeLegacy:
		return ModeLegacy, nil
	default:
		// RetryModeAdaptive and anything else: out of scope (§1 Non-goals
		// exclude adaptive backoff learning).
		return ModeLegacy, invalidConfig("retry: mode " + v + " is not supported by this subsystem")
	}
}

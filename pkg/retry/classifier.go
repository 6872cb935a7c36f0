package retry

import (
	"errors"

	"github.com/aws/smithy-go"
)

// FailureClassifier is the external collaborator that turns a wire
// response or transport exception into a Failure. The core constructs
// only one Failure itself (the CAPACITY_EXCEEDED failure the Driver
// builds when admission is rejected); otherwise it consumes one through
// the predicates in types.go (IsThrottling, IsRetryable, IsNonRetryable) and,
// for the bundled DefaultClassifier below, through the named error-code
// sets a caller can override.
type FailureClassifier interface {
	Classify(statusCode int, err error) *Failure
}

// DefaultRetryableStatusCodes are the HTTP status codes DefaultClassifier
// treats as transient, per spec §4.5.
var DefaultRetryableStatusCodes = map[int]struct{}{
	500: {},
	502: {},
	503: {},
	504: {},
}

// DefaultThrottleErrorCodes are the service-modeled error codes
// DefaultClassifier treats as throttling. Named and overridable rather
// than hardcoded inline, mirroring the vendored AWS SDK v2
// DefaultThrottleErrorCodes table (see other_examples' vendored
// aws-sdk-go-v2/aws/retry/standard.go) this subsystem's classifier
// supplements with.
var DefaultThrottleErrorCodes = map[string]struct{}{
	"Throttling":                             {},
	"ThrottlingException":                    {},
	"ThrottledException":                     {},
	"RequestThrottledException":              {},
	"TooManyRequestsException":               {},
	"RequestLimitExceeded":                   {},
	"SlowDown":                               {},
	"ProvisionedThroughputExceededException": {},
}

// DefaultTransientErrorCodes are service-modeled error codes
// DefaultClassifier treats as transient (but not throttling).
var DefaultTransientErrorCodes = map[string]struct{}{
	"RequestTimeout":          {},
	"RequestTimeoutException": {},
}

// ClassifierOption customizes a defaultClassifier.
type ClassifierOption func(*defaultClassifier)

// WithThrottleErrorCodes overrides the throttling error-code set.
func WithThrottleErrorCodes(codes map[string]struct{}) ClassifierOption {
	return func(c *defaultClassifier) { c.throttleCodes = codes }
}

// WithTransientErrorCodes overrides the transient error-code set.
func WithTransientErrorCodes(codes map[string]struct{}) ClassifierOption {
	return func(c *defaultClassifier) { c.transientCodes = codes }
}

// WithRetryableStatusCodes overrides the retryable HTTP status set.
func WithRetryableStatusCodes(codes map[int]struct{}) ClassifierOption {
	return func(c *defaultClassifier) { c.statusCodes = codes }
}

type defaultClassifier struct {
	statusCodes    map[int]struct{}
	throttleCodes  map[string]struct{}
	transientCodes map[string]struct{}
}

// NewDefaultClassifier builds the classifier backing RetryCondition's
// DefaultClassifier member (spec §4.5): NETWORK_IO / SERVICE_THROTTLING /
// SERVICE_TRANSIENT are retryable kinds; everything else that doesn't
// match a known status or error code classifies as non-retryable.
func NewDefaultClassifier(opts ...ClassifierOption) FailureClassifier {
	c := &defaultClassifier{
		statusCodes:    DefaultRetryableStatusCodes,
		throttleCodes:  DefaultThrottleErrorCodes,
		transientCodes: DefaultTransientErrorCodes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *defaultClassifier) Classify(statusCode int, err error) *Failure {
	if err == nil && statusCode == 0 {
		return nil
	}
	if err == nil && statusCode >= 200 && statusCode < 400 {
		return nil
	}

	code := errorCode(err)

	if _, ok := c.throttleCodes[code]; ok {
		return &Failure{Kind: FailureServiceThrottling, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	if statusCode == 429 {
		return &Failure{Kind: FailureServiceThrottling, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	if _, ok := c.transientCodes[code]; ok {
		return &Failure{Kind: FailureServiceTransient, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	if _, ok := c.statusCodes[statusCode]; ok {
		return &Failure{Kind: FailureServiceTransient, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	if isNetworkIOError(err) {
		return &Failure{Kind: FailureNetworkIO, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	if statusCode >= 400 && statusCode < 500 {
		return &Failure{Kind: FailureClientNonRetryable, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	if statusCode >= 500 {
		return &Failure{Kind: FailureServiceNonRetryable, StatusCode: statusCode, ErrorCode: code, Err: err}
	}
	return &Failure{Kind: FailureServiceNonRetryable, StatusCode: statusCode, ErrorCode: code, Err: err}
}

// errorCode extracts a service-modeled error code from err when it
// implements smithy.APIError, the convention the teacher's bedrock
// provider client already depends on smithy-go for.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// netIOError is implemented by transport-level errors the executor may
// return directly (not wrapped in an APIError) to signal a connection
// failure rather than a service response.
type netIOError interface {
	NetworkIO() bool
}

func isNetworkIOError(err error) bool {
	var n netIOError
	return errors.As(err, &n)
}

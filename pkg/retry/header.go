package retry

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// HeaderRetryInfo is the name of the retry-observability header the
// driver attaches to every dispatched attempt, per spec §6.
const HeaderRetryInfo = "amz-sdk-request"

// HeaderInvocationID is the companion header: a value stable across
// every attempt of one request, generated once per request.
const HeaderInvocationID = "amz-sdk-invocation-id"

// NewInvocationID returns a fresh value for HeaderInvocationID. Backed
// by google/uuid, already an indirect dependency of the wider client
// library this subsystem ships inside of.
func NewInvocationID() string {
	return uuid.NewString()
}

// RetryInfoHeader formats the literal "<ttt>/<bbb>/<ccc>" value
// described in spec §6:
//
//   - ttt: prior attempts as decimal (0 on the first attempt)
//   - bbb: last backoff delay in whole milliseconds (0 on the first attempt)
//   - ccc: bucket remaining capacity immediately after admission for this
//     attempt, or empty if no token-bucket capacity is bound
//
// remaining/hasBucket are supplied by the caller (the Driver), which
// knows the post-admission reading; this function only formats.
func RetryInfoHeader(ctx *AttemptContext, remaining int, hasBucket bool) string {
	priorAttempts := ctx.AttemptNumber - 1
	if priorAttempts < 0 {
		priorAttempts = 0
	}
	ms := ctx.LastBackoffDelay / time.Millisecond

	ccc := ""
	if hasBucket {
		ccc = strconv.Itoa(remaining)
	}

	return strconv.Itoa(priorAttempts) + "/" + strconv.FormatInt(int64(ms), 10) + "/" + ccc
}

// Package test holds end-to-end scenarios that drive a retry.Policy and
// retry.Driver together against a scripted executor.Mock, rather than
// unit-testing any one component in isolation. Adapted from the
// teacher's integration harness style (table-driven, testify/require),
// generalized from LLM chat completions to HTTP retry scenarios.
package test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// newRequest builds a minimal outbound request for a scenario; the body
// and URL are never inspected by anything under test.
func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://example.invalid/resource", nil)
	require.NoError(t, err)
	return req
}

package test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreclient/rpcretry/pkg/executor"
	"github.com/coreclient/rpcretry/pkg/retry"
)

// TestScenario3_LegacyIgnoresThrottling fires 51 concurrent requests
// against a stub that always returns HTTP 429 under LEGACY mode. Legacy
// never charges the bucket for throttling, so every request exhausts
// its full 4-attempt budget: 51 x 4 = 204 total calls.
func TestScenario3_LegacyIgnoresThrottling(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeLegacy)
	require.NoError(t, err)

	stub := executor.AlwaysStatus(429)

	var wg sync.WaitGroup
	const requests = 51
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			driver := retry.NewDriver(policy, stub)
			_, _ = driver.Do(context.Background(), newRequest(t))
		}()
	}
	wg.Wait()

	require.Equal(t, 204, stub.CallCount())
}

// TestScenario4_StandardThrottles is the same 51-request fan-out under
// STANDARD mode. Each admitted retry costs 5 from a shared 500-token
// bucket, so the bucket runs dry partway through the last round of
// retries: the observed total is 151, short of the throttle-free
// ceiling of 51 x 3 = 153 by exactly the bounded amount the bucket
// arithmetic implies (51 first attempts + 51 first retries costing
// 255 + 49 second retries costing the remaining 245).
func TestScenario4_StandardThrottles(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeStandard)
	require.NoError(t, err)

	stub := executor.AlwaysStatus(429)

	var wg sync.WaitGroup
	const requests = 51
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			driver := retry.NewDriver(policy, stub)
			_, _ = driver.Do(context.Background(), newRequest(t))
		}()
	}
	wg.Wait()

	require.Equal(t, 151, stub.CallCount())
	require.Less(t, stub.CallCount(), 51*3)
}

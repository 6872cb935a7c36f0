package awscompat_test

import (
	"context"
	"testing"

	"github.com/coreclient/rpcretry/pkg/retry"
	"github.com/coreclient/rpcretry/pkg/retry/awscompat"
)

func TestAdapt_MaxAttemptsMatchesPolicy(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeStandard)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)
	if got := r.MaxAttempts(); got != 3 {
		t.Fatalf("MaxAttempts = %d, want 3 (1 initial + 2 retries)", got)
	}
}

func TestAdapt_IsErrorRetryable(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeStandard)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)

	if r.IsErrorRetryable(nil) {
		t.Fatal("nil error must not be retryable")
	}
}

func TestAdapt_GetInitialTokenReleaseOnSuccessCreditsBucket(t *testing.T) {
	bucket := retry.NewCapacity(500)
	_, _, _ = bucket.TryAcquire(10)
	capacity := retry.NewTokenBucketCapacity(bucket, retry.ModeStandard)
	policy, err := retry.NewPolicy(retry.ModeStandard, retry.WithCapacity(capacity))
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)

	release := r.GetInitialToken()
	if err := release(nil); err != nil {
		t.Fatalf("release(nil): %v", err)
	}
	if got := bucket.CurrentCapacity(); got != 491 {
		t.Fatalf("current after initial-token success release = %d, want 491", got)
	}
}

func TestAdapt_GetAttemptTokenMirrorsInitialToken(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeStandard)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)

	release, err := r.GetAttemptToken(context.Background())
	if err != nil {
		t.Fatalf("GetAttemptToken: %v", err)
	}
	if release == nil {
		t.Fatal("expected a non-nil release function")
	}
}

func TestAdapt_GetRetryTokenRejectsWhenCapacityExhausted(t *testing.T) {
	bucket := retry.NewCapacity(1) // below the standard cost of 5
	capacity := retry.NewTokenBucketCapacity(bucket, retry.ModeStandard)
	policy, err := retry.NewPolicy(retry.ModeStandard, retry.WithCapacity(capacity))
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)

	_, err = r.GetRetryToken(context.Background(), nil)
	if err == nil {
		t.Fatal("expected CAPACITY_EXCEEDED error")
	}
	rerr, ok := err.(*retry.Error)
	if !ok || rerr.Code != retry.CodeCapacityExceeded {
		t.Fatalf("expected CAPACITY_EXCEEDED *retry.Error, got %v", err)
	}
}

func TestAdapt_GetRetryTokenGrantsWhenCapacityAvailable(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeStandard)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)

	release, err := r.GetRetryToken(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetRetryToken: %v", err)
	}
	if release == nil {
		t.Fatal("expected a non-nil release function")
	}
	if err := release(nil); err != nil {
		t.Fatalf("release(nil): %v", err)
	}
}

func TestAdapt_RetryDelayDoesNotPanic(t *testing.T) {
	policy, err := retry.NewPolicy(retry.ModeStandard)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	r := awscompat.Adapt(policy)

	d, err := r.RetryDelay(1, nil)
	if err != nil {
		t.Fatalf("RetryDelay: %v", err)
	}
	if d < 0 {
		t.Fatalf("delay must not be negative, got %v", d)
	}
}

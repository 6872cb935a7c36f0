package retry

import (
	"context"
	"os"
	"testing"
)

func TestMode_Defaults(t *testing.T) {
	if n := ModeLegacy.defaultNumRetries(); n != 3 {
		t.Fatalf("legacy defaultNumRetries = %d, want 3", n)
	}
	if n := ModeStandard.defaultNumRetries(); n != 2 {
		t.Fatalf("standard defaultNumRetries = %d, want 2", n)
	}
	if n := ModeLegacy.defaultBucketSize(); n != 500 {
		t.Fatalf("defaultBucketSize = %d, want 500", n)
	}
}

func TestMode_String(t *testing.T) {
	if got := ModeLegacy.String(); got != "legacy" {
		t.Fatalf("ModeLegacy.String() = %q", got)
	}
	if got := ModeStandard.String(); got != "standard" {
		t.Fatalf("ModeStandard.String() = %q", got)
	}
}

func TestResolveModeUncached_EnvVarWins(t *testing.T) {
	t.Setenv(envRetryMode, "standard")
	mode, err := ResolveModeUncached(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeStandard {
		t.Fatalf("mode = %v, want standard", mode)
	}
}

func TestResolveModeUncached_DefaultsToLegacyWhenUnset(t *testing.T) {
	t.Setenv(envRetryMode, "")
	if err := os.Unsetenv(envRetryMode); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	mode, err := ResolveModeUncached(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeLegacy {
		t.Fatalf("mode = %v, want legacy fallback", mode)
	}
}

func TestResolveModeUncached_RejectsUnknownMode(t *testing.T) {
	t.Setenv(envRetryMode, "not-a-real-mode")
	_, err := ResolveModeUncached(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for unrecognized retry mode")
	}
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rerr.Code != CodeInvalidConfig {
		t.Fatalf("error code = %q, want %q", rerr.Code, CodeInvalidConfig)
	}
}

func TestResolveModeUncached_RejectsAdaptive(t *testing.T) {
	t.Setenv(envRetryMode, "adaptive")
	_, err := ResolveModeUncached(context.Background(), "")
	if err == nil {
		t.Fatal("expected error: adaptive mode is out of scope for this subsystem")
	}
}

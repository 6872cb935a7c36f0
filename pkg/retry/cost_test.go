package retry

import "testing"

func TestCostCalculator_Legacy_ThrottlingIsFree(t *testing.T) {
	c := newCostCalculator(ModeLegacy)

	throttled := &Failure{Kind: FailureServiceThrottling}
	if got := c.Cost(throttled); got != 0 {
		t.Fatalf("legacy throttling cost = %d, want 0", got)
	}

	transient := &Failure{Kind: FailureServiceTransient}
	if got := c.Cost(transient); got != 5 {
		t.Fatalf("legacy non-throttling cost = %d, want 5", got)
	}
}

func TestCostCalculator_Standard_ChargesEverythingEqually(t *testing.T) {
	c := newCostCalculator(ModeStandard)

	throttled := &Failure{Kind: FailureServiceThrottling}
	if got := c.Cost(throttled); got != 5 {
		t.Fatalf("standard throttling cost = %d, want 5", got)
	}

	transient := &Failure{Kind: FailureServiceTransient}
	if got := c.Cost(transient); got != 5 {
		t.Fatalf("standard non-throttling cost = %d, want 5", got)
	}
}

func TestCostCalculator_NilFailureIsNeverThrottling(t *testing.T) {
	c := newCostCalculator(ModeLegacy)
	if got := c.Cost(nil); got != 5 {
		t.Fatalf("nil failure cost = %d, want default 5", got)
	}
}

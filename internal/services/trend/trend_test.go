package trend

import (
	"math"
	"testing"

	"TradeTuner/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func TestClassifyMissingShortAverages(t *testing.T) {
	got := Classify(100, nil, f(100), f(100))
	if got.Direction != models.TrendUnknown || got.Strength != 0 {
		t.Fatalf("expected unknown trend, got %+v", got)
	}
	got = Classify(100, f(100), nil, f(100))
	if got.Direction != models.TrendUnknown {
		t.Fatalf("expected unknown trend, got %+v", got)
	}
}

func TestClassifyAllAligned(t *testing.T) {
	got := Classify(103, f(102), f(101), f(100))
	if got.Direction != models.TrendUp {
		t.Fatalf("expected up, got %+v", got)
	}
	if got.Strength != 0.9 {
		t.Fatalf("expected strength 0.9, got %v", got.Strength)
	}

	got = Classify(97, f(98), f(99), f(100))
	if got.Direction != models.TrendDown || got.Strength != 0.9 {
		t.Fatalf("expected strong down, got %+v", got)
	}
}

func TestClassifyEqualInputsVoteDown(t *testing.T) {
	// A perfectly flat series makes close, ma7, ma25, and ma99 all equal.
	// The comparisons are strict, so every vote falls to down and the
	// votes agree unanimously. Deviation from ma25 is zero, so no
	// strength adjustment applies.
	got := Classify(100, f(100), f(100), f(100))
	if got.Direction != models.TrendDown {
		t.Fatalf("expected down on flat series, got %+v", got)
	}
	if got.Strength != 0.9 {
		t.Fatalf("expected strength 0.9, got %v", got.Strength)
	}
}

func TestClassifyShortMediumAgree(t *testing.T) {
	// close > ma7 > ma25 but ma25 < ma99: short and medium vote up.
	got := Classify(103, f(102), f(101), f(105))
	if got.Direction != models.TrendUp || got.Strength != 0.7 {
		t.Fatalf("expected up 0.7, got %+v", got)
	}
}

func TestClassifyMediumLongAgree(t *testing.T) {
	// close below ma7 but ma7 > ma25 > ma99: medium and long vote up.
	got := Classify(100, f(102), f(101), f(100.5))
	if got.Direction != models.TrendUp || got.Strength != 0.6 {
		t.Fatalf("expected up 0.6, got %+v", got)
	}
}

func TestClassifyFullDisagreement(t *testing.T) {
	// short up, medium down, long up: no two adjacent votes agree.
	got := Classify(103, f(101), f(102), f(100))
	if got.Direction != models.TrendSideways || got.Strength != 0.3 {
		t.Fatalf("expected sideways 0.3, got %+v", got)
	}
}

func TestClassifyNilMA99FallsBackToMedium(t *testing.T) {
	// Without ma99 the long vote copies the medium one, so agreement on
	// short+medium becomes full agreement.
	got := Classify(103, f(102), f(101), nil)
	if got.Direction != models.TrendUp || got.Strength != 0.9 {
		t.Fatalf("expected up 0.9 without ma99, got %+v", got)
	}
}

func TestClassifyDeviationConfirmsTrend(t *testing.T) {
	// Close 10% above ma25 in an uptrend pushes strength up, capped at 1.
	got := Classify(110, f(105), f(100), f(95))
	if got.Direction != models.TrendUp {
		t.Fatalf("expected up, got %+v", got)
	}
	if got.Strength != 1.0 {
		t.Fatalf("expected strength capped at 1.0, got %v", got.Strength)
	}
}

func TestClassifyDeviationContradictsTrend(t *testing.T) {
	// Medium and long vote down but the close sits well above ma25:
	// exhaustion penalty on the base 0.6.
	got := Classify(110, f(100), f(104), f(105))
	if got.Direction != models.TrendDown {
		t.Fatalf("expected down, got %+v", got)
	}
	if math.Abs(got.Strength-0.5) > 1e-9 {
		t.Fatalf("expected strength 0.5 after penalty, got %v", got.Strength)
	}
}

func TestClassifySmallDeviationNoAdjustment(t *testing.T) {
	// Close within 5% of ma25: base strength untouched.
	got := Classify(102, f(101), f(100), f(99))
	if got.Strength != 0.9 {
		t.Fatalf("expected base strength 0.9, got %v", got.Strength)
	}
}

func TestClassifySidewaysDeviationPenalty(t *testing.T) {
	// A sideways call never confirms the deviation, so a large gap to ma25
	// always penalizes.
	got := Classify(110, f(103), f(104), f(100))
	if got.Direction != models.TrendSideways {
		t.Fatalf("expected sideways, got %+v", got)
	}
	if math.Abs(got.Strength-0.2) > 1e-9 {
		t.Fatalf("expected 0.3 penalized to 0.2, got %v", got.Strength)
	}
}

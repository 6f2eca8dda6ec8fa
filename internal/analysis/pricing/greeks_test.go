package pricing

import (
	"math"
	"testing"

	"optionsdesk/internal/models"
)

func TestGreeks_ReferenceValues(t *testing.T) {
	p, err := NewPricer(referenceInputs(), DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}
	g := Greeks(p, models.Call)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"delta", g.Delta, 0.17539410647531156},
		{"gamma", g.Gamma, 0.027787662399091383},
		{"theta daily", g.ThetaDaily, -0.036317402763753746},
		{"vega", g.Vega, 0.07993711101108479},
		{"rho", g.Rho, 0.016011651458913173},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > tol {
			t.Errorf("%s = %.16f, want %.16f", tt.name, tt.got, tt.want)
		}
	}

	if math.Abs(g.ThetaWeekly-g.ThetaDaily*7) > tol {
		t.Errorf("theta weekly = %v, want daily*7 = %v", g.ThetaWeekly, g.ThetaDaily*7)
	}
	if math.Abs(g.VegaDollar-g.Vega*100) > tol {
		t.Errorf("vega dollar = %v, want vega*100 = %v", g.VegaDollar, g.Vega*100)
	}
	if math.Abs(g.SharesEquiv-g.Delta*100) > tol {
		t.Errorf("shares equiv = %v, want delta*100 = %v", g.SharesEquiv, g.Delta*100)
	}
}

func TestGreeks_DeltaBounds(t *testing.T) {
	p, err := NewPricer(referenceInputs(), DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}

	call := Greeks(p, models.Call)
	if call.Delta < 0 || call.Delta > 1 {
		t.Errorf("call delta %v outside [0, 1]", call.Delta)
	}

	put := Greeks(p, models.Put)
	if put.Delta < -1 || put.Delta > 0 {
		t.Errorf("put delta %v outside [-1, 0]", put.Delta)
	}

	// Same strike and expiry: call delta - put delta = 1.
	if diff := call.Delta - put.Delta; math.Abs(diff-1) > tol {
		t.Errorf("delta parity: call-put = %v, want 1", diff)
	}
}

func TestGreeks_GammaSharedBetweenCallAndPut(t *testing.T) {
	p, err := NewPricer(referenceInputs(), DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}
	call := Greeks(p, models.Call)
	put := Greeks(p, models.Put)
	if math.Abs(call.Gamma-put.Gamma) > tol {
		t.Errorf("gamma differs: call %v, put %v", call.Gamma, put.Gamma)
	}
	if math.Abs(call.Vega-put.Vega) > tol {
		t.Errorf("vega differs: call %v, put %v", call.Vega, put.Vega)
	}
	if call.Gamma <= 0 {
		t.Errorf("gamma = %v, want > 0", call.Gamma)
	}
}

func TestGreeks_ThetaAndRhoSigns(t *testing.T) {
	p, err := NewPricer(referenceInputs(), DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}

	call := Greeks(p, models.Call)
	if call.ThetaDaily >= 0 {
		t.Errorf("long call theta = %v, want negative", call.ThetaDaily)
	}
	if call.Rho <= 0 {
		t.Errorf("call rho = %v, want positive", call.Rho)
	}

	put := Greeks(p, models.Put)
	if put.Rho >= 0 {
		t.Errorf("put rho = %v, want negative", put.Rho)
	}
}

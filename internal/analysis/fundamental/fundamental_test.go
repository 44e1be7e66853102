package fundamental

import (
	"math"
	"testing"

	"github.com/seenimoa/indiquant/pkg/models"
)

func TestValueZeroPEIsUnknown(t *testing.T) {
	p := DefaultParams()
	if got := Value(models.FundamentalSnapshot{PE: 0}, p); got != 50 {
		t.Errorf("PE=0: got %v, want 50", got)
	}
	if got := Value(models.FundamentalSnapshot{PE: -12}, p); got != 50 {
		t.Errorf("negative PE: got %v, want 50", got)
	}
}

func TestValuePELadder(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		pe   float64
		want float64
	}{
		{10, 80},   // 0.44x
		{15, 70},   // 0.67x
		{20, 60},   // 0.89x
		{22.5, 50}, // 1.0x
		{26, 50},   // 1.16x
		{30, 40},   // 1.33x
		{40, 30},   // 1.78x
	}
	for _, tt := range tests {
		if got := Value(models.FundamentalSnapshot{PE: tt.pe}, p); got != tt.want {
			t.Errorf("PE=%v: got %v, want %v", tt.pe, got, tt.want)
		}
	}
}

func TestValuePBLadder(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		pb   float64
		want float64
	}{
		{0.8, 70},
		{2.0, 60},
		{3.0, 50},
		{10.0, 35},
	}
	for _, tt := range tests {
		if got := Value(models.FundamentalSnapshot{PB: tt.pb}, p); got != tt.want {
			t.Errorf("PB=%v: got %v, want %v", tt.pb, got, tt.want)
		}
	}
}

func TestGrowth(t *testing.T) {
	tests := []struct {
		name      string
		roe, roce float64
		want      float64
	}{
		{"unknown", 0, 0, 50},
		{"excellent", 28, 35, 95},
		{"good", 18, 20, 70},
		{"poor", 5, 6, 25},
		{"negative", -4, 0, 35},
	}
	for _, tt := range tests {
		got := Growth(models.FundamentalSnapshot{ROE: tt.roe, ROCE: tt.roce})
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSafety(t *testing.T) {
	tests := []struct {
		de, div float64
		want    float64
	}{
		{0, 0, 50},
		{0.05, 2.5, 90},
		{0.2, 1.5, 75},
		{0.6, 0, 60},
		{1.2, 0, 50},
		{1.8, 0, 35},
		{2.5, 0, 20},
	}
	for _, tt := range tests {
		got := Safety(models.FundamentalSnapshot{DebtEquity: tt.de, DividendYield: tt.div})
		if got != tt.want {
			t.Errorf("DE=%v div=%v: got %v, want %v", tt.de, tt.div, got, tt.want)
		}
	}
}

func TestQuality(t *testing.T) {
	tests := []struct {
		name string
		f    models.FundamentalSnapshot
		want float64
	}{
		{"strong large cap", models.FundamentalSnapshot{ROE: 18, ROCE: 22, MarketCap: models.LargeCap}, 85},
		{"decent mid cap", models.FundamentalSnapshot{ROE: 13, ROCE: 16, MarketCap: models.MidCap}, 70},
		{"loss making penny", models.FundamentalSnapshot{ROE: -5, ROCE: 4, MarketCap: models.PennyStock}, 20},
		{"unknown", models.FundamentalSnapshot{}, 50},
	}
	for _, tt := range tests {
		if got := Quality(tt.f); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScoreOverallWeights(t *testing.T) {
	f := models.FundamentalSnapshot{PE: 15, PB: 2, ROE: 22, ROCE: 25, DebtEquity: 0.05, DividendYield: 1.2, MarketCap: models.LargeCap}
	b := Score(f, DefaultParams())

	want := 0.30*b.Value + 0.30*b.Growth + 0.20*b.Safety + 0.20*b.Quality
	if math.Abs(b.Overall-want) > 1e-9 {
		t.Errorf("Overall: got %v, want %v", b.Overall, want)
	}
	if b.PEAssessment != Undervalued {
		t.Errorf("PEAssessment: got %q", b.PEAssessment)
	}
	if b.ROEAssessment != ROEExcellent {
		t.Errorf("ROEAssessment: got %q", b.ROEAssessment)
	}
	if b.DEAssessment != DebtFree {
		t.Errorf("DEAssessment: got %q", b.DEAssessment)
	}
}

func TestScoreEmptySnapshotIsNeutral(t *testing.T) {
	b := Score(models.FundamentalSnapshot{}, DefaultParams())
	if b.Overall != 50 {
		t.Errorf("Overall: got %v, want 50", b.Overall)
	}
	if b.PEAssessment != Unknown || b.ROEAssessment != Unknown || b.DEAssessment != Unknown {
		t.Errorf("assessments should be unknown, got %+v", b)
	}
}

func TestAssessments(t *testing.T) {
	peCases := map[float64]string{
		10: SignificantlyUndervalued,
		15: Undervalued,
		22: FairlyValued,
		30: Overvalued,
		40: SignificantlyOvervalued,
	}
	for pe, want := range peCases {
		if got := AssessPE(pe, 22.5); got != want {
			t.Errorf("AssessPE(%v): got %q, want %q", pe, got, want)
		}
	}

	roeCases := map[float64]string{25: ROEExcellent, 17: ROEGood, 8: ROEAverage, 5: ROEPoor, -3: ROEPoor}
	for roe, want := range roeCases {
		if got := AssessROE(roe); got != want {
			t.Errorf("AssessROE(%v): got %q, want %q", roe, got, want)
		}
	}

	deCases := map[float64]string{0.05: DebtFree, 0.5: DebtModerate, 1.5: DebtElevated, 2.1: DebtHigh, 0: Unknown}
	for de, want := range deCases {
		if got := AssessDebt(de); got != want {
			t.Errorf("AssessDebt(%v): got %q, want %q", de, got, want)
		}
	}
}

func TestGrahamHelpers(t *testing.T) {
	if got := GrahamMultiple(10, 2); got != 20 {
		t.Errorf("GrahamMultiple: got %v, want 20", got)
	}
	if got := GrahamMultiple(0, 2); got != 0 {
		t.Errorf("GrahamMultiple with unknown PE: got %v, want 0", got)
	}
}

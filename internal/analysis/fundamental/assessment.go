package fundamental

import "github.com/seenimoa/indiquant/internal/analysis/ladder"

// Assessment labels.
const (
	Unknown = "UNKNOWN"

	SignificantlyUndervalued = "SIGNIFICANTLY_UNDERVALUED"
	Undervalued              = "UNDERVALUED"
	FairlyValued             = "FAIRLY_VALUED"
	Overvalued               = "OVERVALUED"
	SignificantlyOvervalued  = "SIGNIFICANTLY_OVERVALUED"

	ROEExcellent = "EXCELLENT"
	ROEGood      = "GOOD"
	ROEAverage   = "AVERAGE"
	ROEPoor      = "POOR"

	DebtFree     = "DEBT_FREE"
	DebtModerate = "MODERATE_DEBT"
	DebtElevated = "ELEVATED_DEBT"
	DebtHigh     = "HIGH_DEBT"
)

var (
	peAssessment = ladder.Ladder{
		Steps: []ladder.Step{
			ladder.Lt(0.6, 0, SignificantlyUndervalued),
			ladder.Lt(0.8, 0, Undervalued),
			ladder.Gt(1.5, 0, SignificantlyOvervalued),
			ladder.Gt(1.2, 0, Overvalued),
		},
		Default: FairlyValued,
	}
	roeAssessment = ladder.Ladder{
		Steps: []ladder.Step{
			ladder.Gt(20, 0, ROEExcellent),
			ladder.Gt(15, 0, ROEGood),
			ladder.Ge(8, 0, ROEAverage),
		},
		Default: ROEPoor,
	}
	debtAssessment = ladder.Ladder{
		Steps: []ladder.Step{
			ladder.Lt(0.1, 0, DebtFree),
			ladder.Lt(1.0, 0, DebtModerate),
			ladder.Le(1.5, 0, DebtElevated),
		},
		Default: DebtHigh,
	}
)

// AssessPE buckets PE relative to the benchmark.
func AssessPE(pe, benchmark float64) string {
	if pe <= 0 || benchmark <= 0 {
		return Unknown
	}
	return peAssessment.Label(pe / benchmark)
}

// AssessROE buckets return on equity. Zero is unknown.
func AssessROE(roe float64) string {
	if roe == 0 {
		return Unknown
	}
	return roeAssessment.Label(roe)
}

// AssessDebt buckets debt/equity. Non-positive values are unknown.
func AssessDebt(de float64) string {
	if de <= 0 {
		return Unknown
	}
	return debtAssessment.Label(de)
}

package model

// DerivedMetrics holds the per-case values computed from milestone
// timestamps. Durations are fractional minutes; a nil duration means one of
// its endpoint timestamps is absent or unparseable. Negative durations are
// possible when timestamps were entered out of order and are passed through
// as recorded.
type DerivedMetrics struct {
	ReceptionToDiagnosisMin *float64 `json:"reception_to_diagnosis_min"`
	DiagnosisToCommMin      *float64 `json:"diagnosis_to_communication_min"`
	TotalMin                *float64 `json:"total_min"`

	// SLACompliant is true only when TotalMin is defined and within the
	// threshold. Cases without a defined total are never compliant.
	SLACompliant bool `json:"sla_compliant"`

	// DerivedStatus is recomputed from the timestamps and ignores the
	// stored status column entirely.
	DerivedStatus CaseStatus `json:"derived_status"`
}

// CaseReport is a case annotated with its derived metrics, ready for the
// report table and exports.
type CaseReport struct {
	Case
	DerivedMetrics
}

// Summary reduces an annotated case collection to population KPIs.
//
// Statistics requiring at least one sample are nil when no case has a
// defined total duration; the compliance rate over an empty defined-set is
// 0.0 by convention.
type Summary struct {
	TotalCases   int `json:"total_cases"`
	CasesWithTAT int `json:"cases_with_tat"`

	MedianTATMin *float64 `json:"median_tat_min"`
	P90TATMin    *float64 `json:"p90_tat_min"`

	ComplianceRatePct float64 `json:"compliance_rate_pct"`

	AvgReceptionToDiagnosisMin *float64 `json:"avg_reception_to_diagnosis_min"`
	AvgDiagnosisToCommMin      *float64 `json:"avg_diagnosis_to_communication_min"`

	SLAThresholdMin int `json:"sla_threshold_min"`
}

// CaseBar is one bar of the per-case TAT chart.
type CaseBar struct {
	ID           int64   `json:"id"`
	Label        string  `json:"label"`
	TotalMin     float64 `json:"total_min"`
	SLACompliant bool    `json:"sla_compliant"`
}

// HistogramBin is one bucket of the total-duration distribution.
type HistogramBin struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// ChartData bundles the display-surface series computed from an annotated
// snapshot: per-case bars with the SLA reference value, and the TAT
// distribution histogram.
type ChartData struct {
	Bars            []CaseBar      `json:"bars"`
	SLAThresholdMin int            `json:"sla_threshold_min"`
	Histogram       []HistogramBin `json:"histogram"`
}

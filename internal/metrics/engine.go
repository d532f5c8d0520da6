// Package metrics derives turnaround-time values and SLA compliance from
// case milestone timestamps, and reduces annotated collections to summary
// statistics. Everything here is a pure function over the snapshot passed in:
// no storage access, no ambient configuration, safe for concurrent use.
package metrics

import (
	"time"

	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

// StampLayout is the canonical stored form: ISO-8601 at minute precision
// with a UTC offset.
const StampLayout = "2006-01-02T15:04Z07:00"

// stampLayouts lists the accepted timestamp forms, canonical first. Offset-less
// variants are tolerated because manually edited rows may lack a zone.
var stampLayouts = []string{
	StampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseStamp parses stored milestone text. Empty or malformed text reports
// ok=false; it is a data-quality condition, never an error.
func ParseStamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatStamp renders a time in the canonical stored form, truncated to the
// minute.
func FormatStamp(t time.Time) string {
	return t.Truncate(time.Minute).Format(StampLayout)
}

// minutesBetween returns end-start in fractional minutes, or nil when either
// endpoint is absent. Negative results are not clamped: an inverted pair of
// timestamps must stay visible as a data-quality signal.
func minutesBetween(start, end string) *float64 {
	t0, ok := ParseStamp(start)
	if !ok {
		return nil
	}
	t1, ok := ParseStamp(end)
	if !ok {
		return nil
	}
	m := t1.Sub(t0).Minutes()
	return &m
}

// Derive computes the per-case metrics for one case against the given SLA
// threshold in minutes. The stored status field is ignored; the derived
// status depends only on which timestamps are present.
func Derive(c *model.Case, slaMin int) model.DerivedMetrics {
	d := model.DerivedMetrics{
		ReceptionToDiagnosisMin: minutesBetween(c.ReceivedAt, c.DiagnosedAt),
		DiagnosisToCommMin:      minutesBetween(c.DiagnosedAt, c.CommunicatedAt),
		TotalMin:                minutesBetween(c.ReceivedAt, c.CommunicatedAt),
	}

	d.SLACompliant = d.TotalMin != nil && *d.TotalMin <= float64(slaMin)

	_, hasDiag := ParseStamp(c.DiagnosedAt)
	_, hasComm := ParseStamp(c.CommunicatedAt)
	if hasDiag && hasComm {
		d.DerivedStatus = model.StatusReported
	} else {
		d.DerivedStatus = model.StatusPending
	}

	return d
}

// Annotate derives metrics for every case in the snapshot. An empty snapshot
// yields an empty report.
func Annotate(cases []*model.Case, slaMin int) []model.CaseReport {
	reports := make([]model.CaseReport, 0, len(cases))
	for _, c := range cases {
		reports = append(reports, model.CaseReport{
			Case:           *c,
			DerivedMetrics: Derive(c, slaMin),
		})
	}
	return reports
}

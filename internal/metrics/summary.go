package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

// maxHistogramBins caps the TAT distribution resolution.
const maxHistogramBins = 20

// Percentile computes the p-th percentile (0-100) of values using linear
// interpolation between closest ranks: h = (n-1)*p/100, interpolating between
// floor(h) and floor(h)+1. This matches numpy's default method; for small
// samples it differs from nearest-rank definitions, see the boundary tests.
// The input slice is not modified. Returns nil for an empty input.
func Percentile(values []float64, p float64) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	h := float64(n-1) * p / 100.0
	lo := int(math.Floor(h))
	frac := h - float64(lo)
	v := sorted[lo]
	if frac > 0 && lo+1 < n {
		v += frac * (sorted[lo+1] - sorted[lo])
	}
	return &v
}

// Median is the 50th percentile.
func Median(values []float64) *float64 {
	return Percentile(values, 50)
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// Summarize reduces an annotated collection to population KPIs against the
// same threshold used for annotation.
//
// Sample sets are independent per statistic: median, p90 and the compliance
// rate cover cases with a defined total duration, while each per-interval
// average covers the cases where that specific interval is defined, whether
// or not the total is. With no defined totals the summary still carries the
// raw case count, nil for every sample-requiring statistic, and a compliance
// rate of exactly 0.
func Summarize(reports []model.CaseReport, slaMin int) model.Summary {
	s := model.Summary{
		TotalCases:      len(reports),
		SLAThresholdMin: slaMin,
	}

	var totals, recepDiag, diagComm []float64
	withinSLA := 0
	for _, r := range reports {
		if r.TotalMin != nil {
			totals = append(totals, *r.TotalMin)
			if *r.TotalMin <= float64(slaMin) {
				withinSLA++
			}
		}
		if r.ReceptionToDiagnosisMin != nil {
			recepDiag = append(recepDiag, *r.ReceptionToDiagnosisMin)
		}
		if r.DiagnosisToCommMin != nil {
			diagComm = append(diagComm, *r.DiagnosisToCommMin)
		}
	}

	s.CasesWithTAT = len(totals)
	s.MedianTATMin = Median(totals)
	s.P90TATMin = Percentile(totals, 90)
	if len(totals) > 0 {
		s.ComplianceRatePct = 100.0 * float64(withinSLA) / float64(len(totals))
	}
	s.AvgReceptionToDiagnosisMin = mean(recepDiag)
	s.AvgDiagnosisToCommMin = mean(diagComm)

	return s
}

// BuildChartData prepares the per-case TAT bars and the distribution
// histogram from an annotated collection. Cases without a defined total are
// left out of both series.
func BuildChartData(reports []model.CaseReport, slaMin int) model.ChartData {
	cd := model.ChartData{
		Bars:            []model.CaseBar{},
		SLAThresholdMin: slaMin,
		Histogram:       []model.HistogramBin{},
	}

	var totals []float64
	for _, r := range reports {
		if r.TotalMin == nil {
			continue
		}
		cd.Bars = append(cd.Bars, model.CaseBar{
			ID:           r.ID,
			Label:        barLabel(&r.Case),
			TotalMin:     *r.TotalMin,
			SLACompliant: r.SLACompliant,
		})
		totals = append(totals, *r.TotalMin)
	}

	cd.Histogram = histogram(totals, maxHistogramBins)
	return cd
}

func barLabel(c *model.Case) string {
	label := fmt.Sprintf("#%d", c.ID)
	if c.CaseCode != "" {
		label += " " + c.CaseCode
	}
	if c.Service != "" {
		label += " · " + c.Service
	}
	return label
}

// histogram buckets values into at most maxBins fixed-width bins spanning
// [min, max]. Values equal to the upper edge land in the last bin.
func histogram(values []float64, maxBins int) []model.HistogramBin {
	if len(values) == 0 {
		return []model.HistogramBin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	bins := maxBins
	if len(values) < bins {
		bins = len(values)
	}
	if bins < 1 || lo == hi {
		return []model.HistogramBin{{From: lo, To: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i] = model.HistogramBin{
			From: lo + float64(i)*width,
			To:   lo + float64(i+1)*width,
		}
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

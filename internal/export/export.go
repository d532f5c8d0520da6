// Package export renders the annotated report as downloadable tables.
package export

import (
	"math"
	"strconv"

	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

// ReportHeader lists the export columns: identity and descriptors, the
// derived state, the four clinically relevant timestamps and the derived
// values.
var ReportHeader = []string{
	"id",
	"case_code",
	"medical_record",
	"patient",
	"service",
	"surgeon",
	"specimen",
	"status",
	"received_at",
	"cryostat_at",
	"diagnosed_at",
	"communicated_at",
	"reception_to_diagnosis_min",
	"diagnosis_to_communication_min",
	"total_min",
	"sla_compliant",
}

func reportRow(r *model.CaseReport) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.CaseCode,
		r.MedicalRecord,
		r.Patient,
		r.Service,
		r.Surgeon,
		r.Specimen,
		string(r.DerivedStatus),
		r.ReceivedAt,
		r.CryostatAt,
		r.DiagnosedAt,
		r.CommunicatedAt,
		formatMinutes(r.ReceptionToDiagnosisMin),
		formatMinutes(r.DiagnosisToCommMin),
		formatMinutes(r.TotalMin),
		strconv.FormatBool(r.SLACompliant),
	}
}

// formatMinutes renders a duration rounded to one decimal, or an empty cell
// when undefined.
func formatMinutes(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(round1(*v), 'f', 1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

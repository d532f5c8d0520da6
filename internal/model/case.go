// Package model provides data models for frozen-section case tracking.
package model

// CaseStatus represents the lifecycle state of a frozen-section case.
type CaseStatus string

const (
	StatusPending  CaseStatus = "pending"
	StatusReported CaseStatus = "reported"
)

// Milestone names the workflow steps that carry a timestamp.
type Milestone string

const (
	MilestoneIntake        Milestone = "intake"
	MilestoneReception     Milestone = "reception"
	MilestoneCryostat      Milestone = "cryostat"
	MilestoneDiagnosis     Milestone = "diagnosis"
	MilestoneCommunication Milestone = "communication"
)

// Case represents one intraoperative frozen-section specimen record.
//
// Milestone fields hold ISO-8601 minute-precision text as stored; an empty
// string means the milestone has not been recorded. Parsing happens in the
// metrics layer so that malformed text degrades to an absent value instead of
// failing the read path.
type Case struct {
	ID            int64      `json:"id" db:"id"`
	CaseCode      string     `json:"case_code,omitempty" db:"case_code"`
	MedicalRecord string     `json:"medical_record,omitempty" db:"medical_record"`
	Patient       string     `json:"patient,omitempty" db:"patient"`
	Service       string     `json:"service,omitempty" db:"service"`
	Surgeon       string     `json:"surgeon,omitempty" db:"surgeon"`
	Specimen      string     `json:"specimen,omitempty" db:"specimen"`
	Status        CaseStatus `json:"status" db:"status"`

	IntakeAt       string `json:"intake_at,omitempty" db:"intake_at"`
	ReceivedAt     string `json:"received_at,omitempty" db:"received_at"`
	CryostatAt     string `json:"cryostat_at,omitempty" db:"cryostat_at"`
	DiagnosedAt    string `json:"diagnosed_at,omitempty" db:"diagnosed_at"`
	CommunicatedAt string `json:"communicated_at,omitempty" db:"communicated_at"`

	Notes string `json:"notes,omitempty" db:"notes"`
}

// MilestoneValue returns the stored timestamp text for the given milestone.
func (c *Case) MilestoneValue(m Milestone) string {
	switch m {
	case MilestoneIntake:
		return c.IntakeAt
	case MilestoneReception:
		return c.ReceivedAt
	case MilestoneCryostat:
		return c.CryostatAt
	case MilestoneDiagnosis:
		return c.DiagnosedAt
	case MilestoneCommunication:
		return c.CommunicatedAt
	}
	return ""
}

// CreateCaseRequest represents a request to register a new case.
type CreateCaseRequest struct {
	CaseCode      string `json:"case_code,omitempty"`
	MedicalRecord string `json:"medical_record,omitempty"`
	Patient       string `json:"patient,omitempty"`
	Service       string `json:"service,omitempty"`
	Surgeon       string `json:"surgeon,omitempty"`
	Specimen      string `json:"specimen,omitempty"`
	Notes         string `json:"notes,omitempty"`

	// IntakeAt optionally overrides the intake timestamp; when empty the
	// current time, truncated to the minute, is recorded.
	IntakeAt string `json:"intake_at,omitempty"`
}

// UpdateCaseRequest represents a partial update of a case's descriptive
// fields. Nil fields remain untouched. Status may be overridden manually;
// derived views recompute it from the timestamps regardless.
type UpdateCaseRequest struct {
	CaseCode      *string     `json:"case_code,omitempty"`
	MedicalRecord *string     `json:"medical_record,omitempty"`
	Patient       *string     `json:"patient,omitempty"`
	Service       *string     `json:"service,omitempty"`
	Surgeon       *string     `json:"surgeon,omitempty"`
	Specimen      *string     `json:"specimen,omitempty"`
	Status        *CaseStatus `json:"status,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

// MarkMilestoneRequest sets a milestone timestamp. When At is empty the
// current time, truncated to the minute, is used. Re-marking a milestone
// overwrites the previous value.
type MarkMilestoneRequest struct {
	At string `json:"at,omitempty"`
}

// Package repository provides the SQLite-backed data access layer for cases.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

func init() {
	// modernc registers as "sqlite"; sqlx needs the bindvar style for it.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// schema is created idempotently on startup. Milestones are ISO-8601
// minute-precision text; NULL means not recorded. There is no schema
// versioning.
const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	case_code TEXT,
	medical_record TEXT,
	patient TEXT,
	service TEXT,
	surgeon TEXT,
	specimen TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	intake_at TEXT,
	received_at TEXT,
	cryostat_at TEXT,
	diagnosed_at TEXT,
	communicated_at TEXT,
	notes TEXT
)`

// milestoneColumns whitelists the updatable timestamp columns. Milestone
// names arrive from the URL, so the column is always resolved through this
// map, never interpolated.
var milestoneColumns = map[model.Milestone]string{
	model.MilestoneIntake:        "intake_at",
	model.MilestoneReception:     "received_at",
	model.MilestoneCryostat:      "cryostat_at",
	model.MilestoneDiagnosis:     "diagnosed_at",
	model.MilestoneCommunication: "communicated_at",
}

// Open opens the SQLite database at path and ensures the schema exists.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return db, nil
}

// CaseRepository handles case data persistence.
type CaseRepository struct {
	db *sqlx.DB
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *sqlx.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create inserts a new case and assigns its identifier.
func (r *CaseRepository) Create(ctx context.Context, c *model.Case) error {
	query := `
		INSERT INTO cases (
			case_code, medical_record, patient, service, surgeon, specimen,
			status, intake_at, received_at, cryostat_at, diagnosed_at,
			communicated_at, notes
		) VALUES (
			:case_code, :medical_record, :patient, :service, :surgeon, :specimen,
			:status, :intake_at, :received_at, :cryostat_at, :diagnosed_at,
			:communicated_at, :notes
		)
	`

	result, err := r.db.NamedExecContext(ctx, query, toDBCase(c))
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new case id: %w", err)
	}
	c.ID = id

	return nil
}

// Get retrieves a case by ID.
func (r *CaseRepository) Get(ctx context.Context, id int64) (*model.Case, error) {
	var row dbCase
	query := `SELECT * FROM cases WHERE id = ?`

	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("case not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	return fromDBCase(&row), nil
}

// Update rewrites a case's mutable columns.
func (r *CaseRepository) Update(ctx context.Context, c *model.Case) error {
	query := `
		UPDATE cases SET
			case_code = :case_code,
			medical_record = :medical_record,
			patient = :patient,
			service = :service,
			surgeon = :surgeon,
			specimen = :specimen,
			status = :status,
			intake_at = :intake_at,
			received_at = :received_at,
			cryostat_at = :cryostat_at,
			diagnosed_at = :diagnosed_at,
			communicated_at = :communicated_at,
			notes = :notes
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, toDBCase(c))
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("case not found: %d", c.ID)
	}

	return nil
}

// SetMilestone writes one milestone timestamp. Re-setting a milestone
// overwrites the previous value; no history is kept.
func (r *CaseRepository) SetMilestone(ctx context.Context, id int64, m model.Milestone, stamp string) error {
	column, ok := milestoneColumns[m]
	if !ok {
		return fmt.Errorf("unknown milestone: %s", m)
	}

	query := fmt.Sprintf(`UPDATE cases SET %s = ? WHERE id = ?`, column)
	result, err := r.db.ExecContext(ctx, query, stamp, id)
	if err != nil {
		return fmt.Errorf("failed to set %s milestone: %w", m, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("case not found: %d", id)
	}

	return nil
}

// SetStatus overwrites the stored lifecycle state.
func (r *CaseRepository) SetStatus(ctx context.Context, id int64, status model.CaseStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE cases SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("case not found: %d", id)
	}

	return nil
}

// Delete removes a case. Normal operation never deletes; this backs the
// admin surface only.
func (r *CaseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("case not found: %d", id)
	}

	return nil
}

// List returns the full snapshot, newest first.
func (r *CaseRepository) List(ctx context.Context) ([]*model.Case, error) {
	var rows []dbCase
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM cases ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	cases := make([]*model.Case, len(rows))
	for i := range rows {
		cases[i] = fromDBCase(&rows[i])
	}
	return cases, nil
}

// Count returns the number of stored cases.
func (r *CaseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM cases`); err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return n, nil
}

// dbCase mirrors the cases table; optional columns are nullable.
type dbCase struct {
	ID             int64          `db:"id"`
	CaseCode       sql.NullString `db:"case_code"`
	MedicalRecord  sql.NullString `db:"medical_record"`
	Patient        sql.NullString `db:"patient"`
	Service        sql.NullString `db:"service"`
	Surgeon        sql.NullString `db:"surgeon"`
	Specimen       sql.NullString `db:"specimen"`
	Status         string         `db:"status"`
	IntakeAt       sql.NullString `db:"intake_at"`
	ReceivedAt     sql.NullString `db:"received_at"`
	CryostatAt     sql.NullString `db:"cryostat_at"`
	DiagnosedAt    sql.NullString `db:"diagnosed_at"`
	CommunicatedAt sql.NullString `db:"communicated_at"`
	Notes          sql.NullString `db:"notes"`
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toDBCase(c *model.Case) *dbCase {
	return &dbCase{
		ID:             c.ID,
		CaseCode:       nullable(c.CaseCode),
		MedicalRecord:  nullable(c.MedicalRecord),
		Patient:        nullable(c.Patient),
		Service:        nullable(c.Service),
		Surgeon:        nullable(c.Surgeon),
		Specimen:       nullable(c.Specimen),
		Status:         string(c.Status),
		IntakeAt:       nullable(c.IntakeAt),
		ReceivedAt:     nullable(c.ReceivedAt),
		CryostatAt:     nullable(c.CryostatAt),
		DiagnosedAt:    nullable(c.DiagnosedAt),
		CommunicatedAt: nullable(c.CommunicatedAt),
		Notes:          nullable(c.Notes),
	}
}

func fromDBCase(row *dbCase) *model.Case {
	return &model.Case{
		ID:             row.ID,
		CaseCode:       row.CaseCode.String,
		MedicalRecord:  row.MedicalRecord.String,
		Patient:        row.Patient.String,
		Service:        row.Service.String,
		Surgeon:        row.Surgeon.String,
		Specimen:       row.Specimen.String,
		Status:         model.CaseStatus(row.Status),
		IntakeAt:       row.IntakeAt.String,
		ReceivedAt:     row.ReceivedAt.String,
		CryostatAt:     row.CryostatAt.String,
		DiagnosedAt:    row.DiagnosedAt.String,
		CommunicatedAt: row.CommunicatedAt.String,
		Notes:          row.Notes.String,
	}
}

// Package service provides business logic for the intraop board.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Spor195/tablerointraoperatorio/internal/config"
	"github.com/Spor195/tablerointraoperatorio/internal/metrics"
	"github.com/Spor195/tablerointraoperatorio/internal/model"
	"github.com/Spor195/tablerointraoperatorio/internal/repository"
)

// DateLayout is the wire form of the report date-range bounds.
const DateLayout = "2006-01-02"

// BoardService provides case registration, milestone tracking and the
// TAT/SLA reporting surface. All derived values are recomputed from a fresh
// snapshot on every call; nothing is cached.
type BoardService struct {
	repo       *repository.CaseRepository
	loc        *time.Location
	defaultSLA int
}

// NewBoardService creates a new board service.
func NewBoardService(repo *repository.CaseRepository, loc *time.Location, defaultSLA int) *BoardService {
	return &BoardService{
		repo:       repo,
		loc:        loc,
		defaultSLA: defaultSLA,
	}
}

// CreateCase registers a new case. The stored status always starts as
// pending; intake defaults to now, truncated to the minute.
func (s *BoardService) CreateCase(ctx context.Context, req *model.CreateCaseRequest) (*model.Case, error) {
	intake := req.IntakeAt
	if intake == "" {
		intake = metrics.FormatStamp(time.Now().In(s.loc))
	} else if _, ok := metrics.ParseStamp(intake); !ok {
		return nil, fmt.Errorf("invalid intake_at timestamp: %q", intake)
	}

	c := &model.Case{
		CaseCode:      req.CaseCode,
		MedicalRecord: req.MedicalRecord,
		Patient:       req.Patient,
		Service:       req.Service,
		Surgeon:       req.Surgeon,
		Specimen:      req.Specimen,
		Status:        model.StatusPending,
		IntakeAt:      intake,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// GetCase retrieves a case by ID.
func (s *BoardService) GetCase(ctx context.Context, id int64) (*model.Case, error) {
	return s.repo.Get(ctx, id)
}

// UpdateCase applies a partial update to a case's descriptive fields. A
// manual status override is allowed here; derived views recompute the state
// from timestamps regardless of what is stored.
func (s *BoardService) UpdateCase(ctx context.Context, id int64, req *model.UpdateCaseRequest) (*model.Case, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CaseCode != nil {
		c.CaseCode = *req.CaseCode
	}
	if req.MedicalRecord != nil {
		c.MedicalRecord = *req.MedicalRecord
	}
	if req.Patient != nil {
		c.Patient = *req.Patient
	}
	if req.Service != nil {
		c.Service = *req.Service
	}
	if req.Surgeon != nil {
		c.Surgeon = *req.Surgeon
	}
	if req.Specimen != nil {
		c.Specimen = *req.Specimen
	}
	if req.Status != nil {
		if *req.Status != model.StatusPending && *req.Status != model.StatusReported {
			return nil, fmt.Errorf("invalid status: %s", *req.Status)
		}
		c.Status = *req.Status
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteCase removes a case (admin utility).
func (s *BoardService) DeleteCase(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ListCases returns the raw snapshot, newest first.
func (s *BoardService) ListCases(ctx context.Context) ([]*model.Case, error) {
	return s.repo.List(ctx)
}

// MarkMilestone records a milestone timestamp, overwriting any previous
// value. Marking the communication milestone also writes the stored status as
// reported, mirroring how the board has always behaved; the derived state
// never trusts that column.
func (s *BoardService) MarkMilestone(ctx context.Context, id int64, name string, req *model.MarkMilestoneRequest) (*model.Case, error) {
	m := model.Milestone(name)
	switch m {
	case model.MilestoneIntake, model.MilestoneReception, model.MilestoneCryostat,
		model.MilestoneDiagnosis, model.MilestoneCommunication:
	default:
		return nil, fmt.Errorf("unknown milestone: %s", name)
	}

	stamp := req.At
	if stamp == "" {
		stamp = metrics.FormatStamp(time.Now().In(s.loc))
	} else if _, ok := metrics.ParseStamp(stamp); !ok {
		return nil, fmt.Errorf("invalid milestone timestamp: %q", req.At)
	}

	if err := s.repo.SetMilestone(ctx, id, m, stamp); err != nil {
		return nil, err
	}

	if m == model.MilestoneCommunication {
		if err := s.repo.SetStatus(ctx, id, model.StatusReported); err != nil {
			return nil, err
		}
	}

	return s.repo.Get(ctx, id)
}

// SeedDemo inserts demo cases and returns how many were added.
func (s *BoardService) SeedDemo(ctx context.Context) (int, error) {
	return s.repo.SeedDemo(ctx, s.loc)
}

// ReportQuery bounds a report: an optional inclusive date range applied to
// the reception timestamp, and the SLA threshold in minutes.
type ReportQuery struct {
	From       *time.Time
	To         *time.Time
	SLAMinutes int
}

// ResolveSLA validates an operator-supplied threshold, falling back to the
// configured default when raw is empty.
func (s *BoardService) ResolveSLA(raw string) (int, error) {
	if raw == "" {
		return s.defaultSLA, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid SLA threshold: %q", raw)
	}
	if v < config.SLAMinMinutes || v > config.SLAMaxMinutes {
		return 0, fmt.Errorf("SLA threshold must be between %d and %d minutes", config.SLAMinMinutes, config.SLAMaxMinutes)
	}
	return v, nil
}

// ParseDate parses a report range bound in the board's timezone.
func (s *BoardService) ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, s.loc)
}

// Report reads a fresh snapshot, applies the reception-date filter and
// annotates every remaining case against the query's threshold.
func (s *BoardService) Report(ctx context.Context, q ReportQuery) ([]model.CaseReport, error) {
	cases, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return metrics.Annotate(s.filterByReception(cases, q), q.SLAMinutes), nil
}

// Summary reduces the filtered, annotated snapshot to population KPIs.
func (s *BoardService) Summary(ctx context.Context, q ReportQuery) (model.Summary, error) {
	reports, err := s.Report(ctx, q)
	if err != nil {
		return model.Summary{}, err
	}
	return metrics.Summarize(reports, q.SLAMinutes), nil
}

// Charts builds the bar and histogram series for the filtered snapshot.
func (s *BoardService) Charts(ctx context.Context, q ReportQuery) (model.ChartData, error) {
	reports, err := s.Report(ctx, q)
	if err != nil {
		return model.ChartData{}, err
	}
	return metrics.BuildChartData(reports, q.SLAMinutes), nil
}

// filterByReception keeps cases whose parsed reception timestamp falls inside
// the inclusive date range. Without a range the snapshot passes through
// untouched; with one, cases lacking a parseable reception are excluded. The
// range covers 00:00 of the start day through 23:59 of the end day in the
// board's timezone.
func (s *BoardService) filterByReception(cases []*model.Case, q ReportQuery) []*model.Case {
	if q.From == nil && q.To == nil {
		return cases
	}

	var lower, upper time.Time
	if q.From != nil {
		lower = time.Date(q.From.Year(), q.From.Month(), q.From.Day(), 0, 0, 0, 0, s.loc)
	}
	if q.To != nil {
		upper = time.Date(q.To.Year(), q.To.Month(), q.To.Day(), 23, 59, 0, 0, s.loc)
	}

	filtered := make([]*model.Case, 0, len(cases))
	for _, c := range cases {
		t, ok := metrics.ParseStamp(c.ReceivedAt)
		if !ok {
			continue
		}
		t = t.In(s.loc)
		if q.From != nil && t.Before(lower) {
			continue
		}
		if q.To != nil && t.After(upper) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

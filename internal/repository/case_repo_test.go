package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spor195/tablerointraoperatorio/internal/metrics"
	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

func newTestRepo(t *testing.T) *CaseRepository {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCaseRepository(db)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &model.Case{
		CaseCode:      "IO-20240305-100",
		MedicalRecord: "MR3000",
		Patient:       "P1",
		Service:       "Trauma",
		Surgeon:       "Dr. A",
		Specimen:      "Sentinel node",
		Status:        model.StatusPending,
		IntakeAt:      "2024-03-05T08:55Z",
		Notes:         "rush",
	}

	require.NoError(t, repo.Create(ctx, c))
	assert.Greater(t, c.ID, int64(0))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestGetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), 999)
	assert.ErrorContains(t, err, "case not found")
}

func TestOptionalFieldsRoundTripEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &model.Case{Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CaseCode)
	assert.Empty(t, got.ReceivedAt)
	assert.Empty(t, got.Notes)
	assert.Equal(t, model.StatusPending, got.Status)
}

func TestSetMilestoneOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &model.Case{Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.SetMilestone(ctx, c.ID, model.MilestoneReception, "2024-03-05T09:00Z"))
	require.NoError(t, repo.SetMilestone(ctx, c.ID, model.MilestoneReception, "2024-03-05T09:05Z"))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T09:05Z", got.ReceivedAt)
}

func TestSetMilestoneUnknownName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &model.Case{Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, c))

	err := repo.SetMilestone(ctx, c.ID, model.Milestone("embedding"), "2024-03-05T09:00Z")
	assert.ErrorContains(t, err, "unknown milestone")
}

func TestSetMilestoneNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SetMilestone(context.Background(), 42, model.MilestoneDiagnosis, "2024-03-05T09:00Z")
	assert.ErrorContains(t, err, "case not found")
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &model.Case{Status: model.StatusPending, Service: "Trauma"}
	require.NoError(t, repo.Create(ctx, c))

	c.Service = "Gynecology"
	c.Status = model.StatusReported
	c.Notes = "updated"
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gynecology", got.Service)
	assert.Equal(t, model.StatusReported, got.Status)
	assert.Equal(t, "updated", got.Notes)
}

func TestListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &model.Case{Status: model.StatusPending, CaseCode: "A"}
	second := &model.Case{Status: model.StatusPending, CaseCode: "B"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	cases, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "B", cases[0].CaseCode)
	assert.Equal(t, "A", cases[1].CaseCode)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := &model.Case{Status: model.StatusPending}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Delete(ctx, c.ID))

	_, err := repo.Get(ctx, c.ID)
	assert.ErrorContains(t, err, "case not found")

	assert.ErrorContains(t, repo.Delete(ctx, c.ID), "case not found")
}

func TestCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, repo.Create(ctx, &model.Case{Status: model.StatusPending}))

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSeedDemo(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.SeedDemo(ctx, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	cases, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 8)

	for _, c := range cases {
		assert.Equal(t, model.StatusReported, c.Status)
		for _, field := range []string{c.IntakeAt, c.ReceivedAt, c.CryostatAt, c.DiagnosedAt, c.CommunicatedAt} {
			_, ok := metrics.ParseStamp(field)
			assert.True(t, ok, "seeded milestone %q must parse", field)
		}
	}
}

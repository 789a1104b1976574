package application

import (
	"context"
	stderrors "errors"
	"testing"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardJobs() []models.Job {
	return []models.Job{
		{ID: "1", Title: "Backend Engineer", Company: "Acme", Location: "Manila", Type: "Full-time"},
		{ID: "2", Title: "Frontend Engineer", Company: "Globex", Location: "Cebu", Type: "Part-time"},
		{ID: "3", Title: "Data Analyst", Company: "Acme", Location: "Makati, Manila", Type: "Full-time"},
	}
}

func ids(jobs []models.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestBoard_Search(t *testing.T) {
	h := newHarness(t, nil, boardJobs()...)

	assert.Equal(t, []string{"1", "2", "3"}, ids(h.board.Results()))

	got := h.board.Search(models.JobFilters{Title: "engineer", Type: "Full-time"})
	assert.Equal(t, []string{"1"}, ids(got))

	got = h.board.Search(models.JobFilters{Location: "MANILA"})
	assert.Equal(t, []string{"1", "3"}, ids(got))

	got = h.board.Search(models.JobFilters{Company: "Globex"})
	assert.Equal(t, []string{"1", "2", "3"}, ids(got), "company is not an applicant filter")
	assert.Empty(t, h.board.Filters().Company)

	got = h.board.ResetFilters()
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	assert.True(t, h.board.Filters().IsZero())
}

func TestBoard_ReloadKeepsFilters(t *testing.T) {
	h := newHarness(t, nil, boardJobs()...)
	h.board.Search(models.JobFilters{Title: "analyst"})

	h.backend.mu.Lock()
	h.backend.jobs = append(h.backend.jobs, models.Job{ID: "4", Title: "Senior Analyst"})
	h.backend.mu.Unlock()
	require.NoError(t, h.board.LoadJobs(context.Background()))

	assert.Equal(t, []string{"3", "4"}, ids(h.board.Results()))
}

func TestBoard_ViewJob(t *testing.T) {
	h := newHarness(t, nil, boardJobs()...)

	assert.False(t, h.board.ViewJob("missing"))
	_, ok := h.board.SelectedJob()
	assert.False(t, ok)

	require.True(t, h.board.ViewJob("2"))
	job, ok := h.board.SelectedJob()
	require.True(t, ok)
	assert.Equal(t, "Globex", job.Company)

	h.board.CloseJob()
	_, ok = h.board.SelectedJob()
	assert.False(t, ok)
}

func TestBoard_SaveJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous cannot save", func(t *testing.T) {
		h := newHarness(t, nil, boardJobs()...)

		err := h.board.ToggleSaveJob(ctx, "1")

		assert.False(t, h.board.CanSaveJobs())
		assert.True(t, stderrors.Is(err, &apperrors.StandardError{Code: apperrors.ErrCodePreconditionFailed}))
		assert.False(t, h.board.IsJobSaved("1"))
	})

	t.Run("employer cannot save", func(t *testing.T) {
		h := newHarness(t, nil, boardJobs()...)
		h.user.signIn("emp-1", false)

		assert.False(t, h.board.CanSaveJobs())
		assert.Error(t, h.board.ToggleSaveJob(ctx, "1"))
	})

	t.Run("applicant toggles", func(t *testing.T) {
		h := newHarness(t, nil, boardJobs()...)
		h.user.signIn("user-1", true)

		require.NoError(t, h.board.ToggleSaveJob(ctx, "1"))
		assert.True(t, h.board.IsJobSaved("1"))

		require.NoError(t, h.board.LoadJobs(ctx))
		assert.True(t, h.board.IsJobSaved("1"), "saved set reloads with the job list")

		require.NoError(t, h.board.ToggleSaveJob(ctx, "1"))
		assert.False(t, h.board.IsJobSaved("1"))
	})
}

func TestBoard_JobTypes(t *testing.T) {
	h := newHarness(t, nil)

	types := h.board.JobTypes()
	require.Equal(t, len(models.JobTypes), len(types))
	types[0].Label = "changed"
	assert.NotEqual(t, "changed", models.JobTypes[0].Label)
}

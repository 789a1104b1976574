package jobs

import (
	"context"
	stderrors "errors"
	"testing"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) FetchJobs(ctx context.Context) ([]models.Job, error) {
	args := m.Called(ctx)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func (m *mockBackend) CreateJob(ctx context.Context, draft models.JobDraft) (*models.Job, error) {
	args := m.Called(ctx, draft)
	job, _ := args.Get(0).(*models.Job)
	return job, args.Error(1)
}

func (m *mockBackend) CreateApplication(ctx context.Context, jobID, userID string, responses []models.ApplicationResponse) (*models.Application, error) {
	args := m.Called(ctx, jobID, userID, responses)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockBackend) ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error) {
	args := m.Called(ctx, userID, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBackend) SavedJobIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type staticUser string

func (u staticUser) CurrentUserID() (string, bool) {
	return string(u), u != ""
}

func sampleJobs() []models.Job {
	return []models.Job{
		{ID: "1", Title: "Senior Go Engineer", Company: "Acme", Location: "Makati City", Type: "Full-Time"},
		{ID: "2", Title: "Frontend Engineer", Company: "Globex", Location: "Cebu", Type: "Remote"},
		{ID: "3", Title: "Data Analyst", Company: "Acme", Location: "Manila", Type: "Part-Time"},
	}
}

func loadedService(t *testing.T, user staticUser) (*Service, *mockBackend) {
	backend := &mockBackend{}
	backend.On("FetchJobs", mock.Anything).Return(sampleJobs(), nil).Once()
	if user != "" {
		backend.On("SavedJobIDs", mock.Anything, string(user)).Return([]string{"2"}, nil).Once()
	}

	s := NewService(backend, user, logger.NewTestLogger(t))
	require.NoError(t, s.LoadJobs(context.Background()))
	return s, backend
}

func ids(jobs []models.Job) []string {
	out := []string{}
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

// ==========================
// Listing
// ==========================

func TestService_List(t *testing.T) {
	s, _ := loadedService(t, "")

	tests := []struct {
		name    string
		filters models.JobFilters
		want    []string
	}{
		{"no filters", models.JobFilters{}, []string{"1", "2", "3"}},
		{"title substring ignores case", models.JobFilters{Title: "engineer"}, []string{"1", "2"}},
		{"location substring", models.JobFilters{Location: "MAKATI"}, []string{"1"}},
		{"company substring", models.JobFilters{Company: "acme"}, []string{"1", "3"}},
		{"type is exact", models.JobFilters{Type: "Full-Time"}, []string{"1"}},
		{"type is not a substring match", models.JobFilters{Type: "Time"}, []string{}},
		{"combined", models.JobFilters{Title: "engineer", Type: "Remote"}, []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.List(tt.filters)))
		})
	}
}

func TestService_GetByID(t *testing.T) {
	s, _ := loadedService(t, "")

	job, ok := s.GetByID("3")
	assert.True(t, ok)
	assert.Equal(t, "Data Analyst", job.Title)

	_, ok = s.GetByID("404")
	assert.False(t, ok)
}

func TestService_LoadJobs_Error(t *testing.T) {
	backend := &mockBackend{}
	backend.On("FetchJobs", mock.Anything).Return(nil, stderrors.New("db down"))

	s := NewService(backend, staticUser(""), logger.NewTestLogger(t))

	assert.Error(t, s.LoadJobs(context.Background()))
	assert.Empty(t, s.List(models.JobFilters{}))
}

// ==========================
// Create / Apply
// ==========================

func TestService_Create_PrependsToCache(t *testing.T) {
	s, backend := loadedService(t, "")
	draft := models.JobDraft{Title: "Ops", PostedBy: "emp-1"}
	backend.On("CreateJob", mock.Anything, draft).Return(&models.Job{ID: "9", Title: "Ops"}, nil)

	job, err := s.Create(context.Background(), draft)

	require.NoError(t, err)
	assert.Equal(t, "9", job.ID)
	assert.Equal(t, []string{"9", "1", "2", "3"}, ids(s.List(models.JobFilters{})))
}

func TestService_ApplyJob(t *testing.T) {
	responses := []models.ApplicationResponse{{Question: "Q1", Answer: "A1"}}

	t.Run("signed in", func(t *testing.T) {
		s, backend := loadedService(t, "user-1")
		backend.On("CreateApplication", mock.Anything, "1", "user-1", responses).
			Return(&models.Application{ID: "app-1"}, nil)

		assert.NoError(t, s.ApplyJob(context.Background(), "1", responses))
		backend.AssertExpectations(t)
	})

	t.Run("anonymous", func(t *testing.T) {
		s, backend := loadedService(t, "")

		err := s.ApplyJob(context.Background(), "1", responses)

		assert.Equal(t, apperrors.ErrCodePreconditionFailed, apperrors.Normalize(err).Code)
		backend.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate passes through", func(t *testing.T) {
		s, backend := loadedService(t, "user-1")
		backend.On("CreateApplication", mock.Anything, "1", "user-1", responses).
			Return(nil, apperrors.NewDuplicateApplicationError("1", "user-1"))

		err := s.ApplyJob(context.Background(), "1", responses)

		assert.Equal(t, apperrors.ErrCodeDuplicateApplication, apperrors.Normalize(err).Code)
	})

	t.Run("no record is a failure", func(t *testing.T) {
		s, backend := loadedService(t, "user-1")
		backend.On("CreateApplication", mock.Anything, "1", "user-1", responses).
			Return(nil, nil)

		var err error
		require.NotPanics(t, func() { err = s.ApplyJob(context.Background(), "1", responses) })
		assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, apperrors.Normalize(err).Code)
	})
}

// ==========================
// Saved jobs
// ==========================

func TestService_SavedJobs(t *testing.T) {
	s, backend := loadedService(t, "user-1")
	assert.True(t, s.IsJobSaved("2"))
	assert.False(t, s.IsJobSaved("1"))

	backend.On("ToggleSavedJob", mock.Anything, "user-1", "1").Return(true, nil).Once()
	backend.On("ToggleSavedJob", mock.Anything, "user-1", "2").Return(false, nil).Once()

	require.NoError(t, s.ToggleSaveJob(context.Background(), "1"))
	require.NoError(t, s.ToggleSaveJob(context.Background(), "2"))

	assert.True(t, s.IsJobSaved("1"))
	assert.False(t, s.IsJobSaved("2"))
}

func TestService_ToggleSaveJob_Anonymous(t *testing.T) {
	s, _ := loadedService(t, "")

	err := s.ToggleSaveJob(context.Background(), "1")

	assert.Error(t, err)
	assert.False(t, s.IsJobSaved("1"))
}

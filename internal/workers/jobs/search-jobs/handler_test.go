// internal/workers/jobs/search-jobs/handler_test.go
package searchjobs

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/store/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, f models.JobFilters, page search.Page) (*search.Result, error) {
	args := m.Called(ctx, f, page)
	res, _ := args.Get(0).(*search.Result)
	return res, args.Error(1)
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestHandler_Execute_Success(t *testing.T) {
	searcher := &mockSearcher{}
	filters := models.JobFilters{Title: "engineer", Type: "Full-Time"}
	page := search.Page{From: 0, Size: 10}
	searcher.On("Search", mock.Anything, filters, page).Return(&search.Result{
		Jobs:  []models.Job{{ID: "job-1", Title: "Backend Engineer"}},
		Total: 1,
		Took:  2,
	}, nil)

	h := NewHandler(createTestConfig(), searcher, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Filters: filters, Pagination: page})

	require.NoError(t, err)
	assert.Equal(t, int64(1), out.TotalHits)
	assert.Equal(t, int64(2), out.Took)
	require.Len(t, out.Jobs, 1)
	assert.Equal(t, "job-1", out.Jobs[0].ID)
	searcher.AssertExpectations(t)
}

func TestHandler_Execute_InvalidPagination(t *testing.T) {
	searcher := &mockSearcher{}
	h := NewHandler(createTestConfig(), searcher, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Pagination: search.Page{Size: 500}})

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.Normalize(err).Code)
	searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_SearchFailed(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewSearchQueryFailedError(errors.New("shard failure")))

	h := NewHandler(createTestConfig(), searcher, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{})

	assert.True(t, errors.Is(err, ErrSearchQueryFailed))
	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeSearchQueryFailed, std.Code)
	assert.Equal(t, 3, apperrors.ConvertToBPMNError(std).Retries)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	searcher := &mockSearcher{}
	searcher.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.DeadlineExceeded)

	h := NewHandler(createTestConfig(), searcher, logger.NewTestLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := h.Execute(ctx, &Input{})

	assert.True(t, errors.Is(err, ErrSearchTimeout))
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := NewHandler(createTestConfig(), &mockSearcher{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), nil)

	assert.Error(t, err)
}

// internal/workers/application/submit-application/handler_test.go
package submitapplication

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/store/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestInput() *Input {
	return &Input{
		JobID:  "job-1",
		UserID: "user-1",
		Responses: []models.ApplicationResponse{
			{Question: "Why do you want to work here?", Answer: "Growth"},
		},
	}
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	return NewHandler(createTestConfig(), postgres.NewStore(db, log), log), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(sqlmock.AnyArg(), "job-1", "user-1", sqlmock.AnyArg(), "submitted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE jobs SET applicant_count`).
		WithArgs("job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	out, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, out.ApplicationID)
	assert.Equal(t, models.ApplicationStatusSubmitted, out.ApplicationStatus)
	_, err = time.Parse(time.RFC3339, out.CreatedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoQuestions(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(sqlmock.AnyArg(), "job-1", "user-1", []byte("[]"), "submitted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := h.Execute(context.Background(), &Input{JobID: "job-1", UserID: "user-1"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Cases
// ==========================

func TestHandler_Execute_Duplicate(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := h.Execute(context.Background(), createTestInput())

	assert.True(t, errors.Is(err, ErrDuplicateApplication))
	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeDuplicateApplication, std.Code)
	assert.Equal(t, 0, apperrors.ConvertToBPMNError(std).Retries)
}

func TestHandler_Execute_UnknownJob(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), createTestInput())

	assert.True(t, errors.Is(err, ErrJobNotFound))
	assert.False(t, errors.Is(err, ErrDatabaseInsertFailed))
	assert.Equal(t, 0, apperrors.ConvertToBPMNError(apperrors.Normalize(err)).Retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertFailed(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO applications`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), createTestInput())

	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
	assert.True(t, apperrors.Normalize(err).Retryable)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"missing job", &Input{UserID: "user-1"}},
		{"missing user", &Input{JobID: "job-1"}},
		{"blank question", &Input{JobID: "job-1", UserID: "user-1", Responses: []models.ApplicationResponse{{Answer: "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestHandler(t)

			_, err := h.Execute(context.Background(), tt.input)

			assert.True(t, errors.Is(err, ErrInvalidInput))
			assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.Normalize(err).Code)
			assert.NoError(t, mock.ExpectationsWereMet(), "store must not be called")
		})
	}
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLSTATE codes the store maps to domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	invalidTextRep      = "22P02"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUnknownJob reports a job reference Postgres rejected: no such job row, or
// an id that is not a UUID at all.
func isUnknownJob(err error) bool {
	switch pqCode(err) {
	case foreignKeyViolation, invalidTextRep:
		return true
	}
	return false
}

// CreateApplication stores an application and bumps the job's applicant
// count in one transaction. A second application by the same user for the
// same job fails with DUPLICATE_APPLICATION.
func (s *Store) CreateApplication(ctx context.Context, jobID, userID string, responses []models.ApplicationResponse) (*models.Application, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE job_id = $1 AND user_id = $2
		)`, jobID, userID).Scan(&exists)
	if err != nil {
		if isUnknownJob(err) {
			return nil, apperrors.NewJobNotFoundError(jobID)
		}
		return nil, apperrors.NewQueryExecutionFailedError("duplicate check", err)
	}
	if exists {
		return nil, apperrors.NewDuplicateApplicationError(jobID, userID)
	}

	if responses == nil {
		responses = []models.ApplicationResponse{}
	}
	responsesJSON, err := json.Marshal(responses)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal responses: %w", err))
	}

	app := &models.Application{
		ID:        uuid.New().String(),
		JobID:     jobID,
		UserID:    userID,
		Responses: responses,
		Status:    models.ApplicationStatusSubmitted,
		CreatedAt: s.now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, user_id, responses, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.JobID, app.UserID, responsesJSON, app.Status, app.CreatedAt,
	)
	if err != nil {
		switch {
		// A concurrent submit can pass the EXISTS check and still lose here.
		case pqCode(err) == uniqueViolation:
			return nil, apperrors.NewDuplicateApplicationError(jobID, userID)
		case isUnknownJob(err):
			return nil, apperrors.NewJobNotFoundError(jobID)
		}
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE jobs SET applicant_count = applicant_count + 1 WHERE id = $1`, jobID)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, apperrors.NewJobNotFoundError(jobID)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	committed = true

	s.audit(ctx, "application_created", "application", app.ID, map[string]interface{}{
		"jobId":         jobID,
		"userId":        userID,
		"responseCount": len(responses),
	})

	s.logger.Info("application record created", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         jobID,
		"userId":        userID,
	})

	return app, nil
}

// GetApplication loads one application by id.
func (s *Store) GetApplication(ctx context.Context, applicationID string) (*models.Application, error) {
	var (
		app           models.Application
		responsesJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, user_id, responses, status, created_at
		FROM applications WHERE id = $1`, applicationID).
		Scan(&app.ID, &app.JobID, &app.UserID, &responsesJSON, &app.Status, &app.CreatedAt)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("select application", err)
	}
	if err := json.Unmarshal(responsesJSON, &app.Responses); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("decode responses", err)
	}
	return &app, nil
}

// JobOwner identifies who posted a job.
type JobOwner struct {
	PostedBy string
	Title    string
	Company  string
}

// JobOwner returns the poster of a job along with its title and company.
func (s *Store) JobOwner(ctx context.Context, jobID string) (*JobOwner, error) {
	var owner JobOwner
	err := s.db.QueryRowContext(ctx, `
		SELECT posted_by, title, company FROM jobs WHERE id = $1`, jobID).
		Scan(&owner.PostedBy, &owner.Title, &owner.Company)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewJobNotFoundError(jobID)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("select job owner", err)
	}
	return &owner, nil
}

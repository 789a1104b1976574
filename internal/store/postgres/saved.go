package postgres

import (
	"context"

	apperrors "jobboard-workers/internal/common/errors"
)

// ToggleSavedJob saves the job for the user, or unsaves it when already
// saved. It reports whether the job is saved afterwards.
func (s *Store) ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		if isUnknownJob(err) {
			return false, apperrors.NewJobNotFoundError(jobID)
		}
		return false, apperrors.NewQueryExecutionFailedError("delete saved job", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_jobs (user_id, job_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`, userID, jobID, s.now())
	if err != nil {
		if isUnknownJob(err) {
			return false, apperrors.NewJobNotFoundError(jobID)
		}
		return false, apperrors.NewDatabaseInsertFailedError(err)
	}
	return true, nil
}

// SavedJobIDs lists the jobs a user saved.
func (s *Store) SavedJobIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id FROM saved_jobs WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("select saved jobs", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan saved job", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

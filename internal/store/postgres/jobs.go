package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/models"

	"github.com/google/uuid"
)

const selectJobs = `
	SELECT id, title, company, location, type, description, salary, posted_by,
	       application_questions, applicant_count, created_at
	FROM jobs
	ORDER BY created_at DESC`

// FetchJobs returns every posting, newest first.
func (s *Store) FetchJobs(ctx context.Context) ([]models.Job, error) {
	rows, err := s.db.QueryContext(ctx, selectJobs)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("select jobs", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		var (
			job           models.Job
			questionsJSON []byte
		)
		if err := rows.Scan(
			&job.ID, &job.Title, &job.Company, &job.Location, &job.Type,
			&job.Description, &job.Salary, &job.PostedBy,
			&questionsJSON, &job.ApplicantCount, &job.CreatedAt,
		); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("scan job", err)
		}
		if len(questionsJSON) > 0 {
			if err := json.Unmarshal(questionsJSON, &job.ApplicationQuestions); err != nil {
				return nil, apperrors.NewQueryExecutionFailedError("decode application_questions", err)
			}
		}
		if job.ApplicationQuestions == nil {
			job.ApplicationQuestions = []models.ApplicationQuestion{}
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("iterate jobs", err)
	}

	return jobs, nil
}

// CreateJob inserts a posting and returns it with its generated id.
func (s *Store) CreateJob(ctx context.Context, draft models.JobDraft) (*models.Job, error) {
	questions := draft.ApplicationQuestions
	if questions == nil {
		questions = []models.ApplicationQuestion{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(fmt.Errorf("marshal questions: %w", err))
	}

	job := &models.Job{
		ID:                   uuid.New().String(),
		Title:                draft.Title,
		Company:              draft.Company,
		Location:             draft.Location,
		Type:                 draft.Type,
		Description:          draft.Description,
		Salary:               draft.Salary,
		PostedBy:             draft.PostedBy,
		ApplicationQuestions: questions,
		CreatedAt:            s.now(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, title, company, location, type, description, salary, posted_by,
			application_questions, applicant_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)`,
		job.ID, job.Title, job.Company, job.Location, job.Type,
		job.Description, job.Salary, job.PostedBy, questionsJSON, job.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}

	s.audit(ctx, "job_created", "job", job.ID, map[string]interface{}{
		"postedBy":      job.PostedBy,
		"questionCount": len(questions),
	})

	s.logger.Info("job created", map[string]interface{}{
		"jobId":    job.ID,
		"postedBy": job.PostedBy,
	})

	return job, nil
}

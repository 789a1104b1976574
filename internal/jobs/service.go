// Package jobs is the client-side job catalog: a snapshot of postings loaded
// from the job store, plus the signed-in user's saved jobs.
package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
)

// Backend is the persistent job store.
type Backend interface {
	FetchJobs(ctx context.Context) ([]models.Job, error)
	CreateJob(ctx context.Context, draft models.JobDraft) (*models.Job, error)
	CreateApplication(ctx context.Context, jobID, userID string, responses []models.ApplicationResponse) (*models.Application, error)
	ToggleSavedJob(ctx context.Context, userID, jobID string) (bool, error)
	SavedJobIDs(ctx context.Context, userID string) ([]string, error)
}

// UserSource reports the signed-in user.
type UserSource interface {
	CurrentUserID() (string, bool)
}

// Service caches the job list between loads. List, GetByID and IsJobSaved
// read the cache and never block on the backend.
type Service struct {
	backend Backend
	users   UserSource
	logger  logger.Logger

	mu    sync.RWMutex
	jobs  []models.Job
	saved map[string]struct{}
}

func NewService(backend Backend, users UserSource, log logger.Logger) *Service {
	return &Service{
		backend: backend,
		users:   users,
		logger:  logger.ForComponent(log, "jobs"),
		saved:   map[string]struct{}{},
	}
}

// LoadJobs replaces the cached job list and, for a signed-in user, the saved
// job set.
func (s *Service) LoadJobs(ctx context.Context) error {
	jobs, err := s.backend.FetchJobs(ctx)
	if err != nil {
		s.logger.Error("load jobs failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	saved := map[string]struct{}{}
	if userID, ok := s.users.CurrentUserID(); ok {
		ids, err := s.backend.SavedJobIDs(ctx, userID)
		if err != nil {
			s.logger.Warn("load saved jobs failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
		for _, id := range ids {
			saved[id] = struct{}{}
		}
	}

	s.mu.Lock()
	s.jobs = jobs
	s.saved = saved
	s.mu.Unlock()

	s.logger.Debug("jobs loaded", map[string]interface{}{"count": len(jobs)})
	return nil
}

// GetByID returns the cached job with the given id.
func (s *Service) GetByID(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return models.Job{}, false
}

// List filters the cached jobs. Title, company and location match by
// case-insensitive substring; type must match exactly. Empty filters match
// everything.
func (s *Service) List(filters models.JobFilters) []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if Matches(j, filters) {
			out = append(out, j)
		}
	}
	return out
}

// Matches applies the listing filter rules to one job.
func Matches(j models.Job, f models.JobFilters) bool {
	return containsFold(j.Title, f.Title) &&
		containsFold(j.Company, f.Company) &&
		containsFold(j.Location, f.Location) &&
		(f.Type == "" || j.Type == f.Type)
}

func containsFold(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Create stores a new posting and adds it to the cache.
func (s *Service) Create(ctx context.Context, draft models.JobDraft) (*models.Job, error) {
	job, err := s.backend.CreateJob(ctx, draft)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	s.mu.Lock()
	s.jobs = append([]models.Job{*job}, s.jobs...)
	s.mu.Unlock()

	return job, nil
}

// ApplyJob submits the signed-in user's responses for a job.
func (s *Service) ApplyJob(ctx context.Context, jobID string, responses []models.ApplicationResponse) error {
	userID, ok := s.users.CurrentUserID()
	if !ok {
		return apperrors.NewPreconditionFailedError("User not authenticated", "apply requires a signed-in user")
	}

	app, err := s.backend.CreateApplication(ctx, jobID, userID, responses)
	if err != nil {
		s.logger.Warn("application rejected by store", map[string]interface{}{
			"jobId":  jobID,
			"userId": userID,
			"error":  err.Error(),
		})
		return err
	}
	if app == nil {
		return apperrors.NewDatabaseInsertFailedError(errors.New("store returned no application record"))
	}

	s.logger.Info("application submitted", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         jobID,
		"userId":        userID,
	})
	return nil
}

// ToggleSaveJob flips the saved state of a job for the signed-in user.
func (s *Service) ToggleSaveJob(ctx context.Context, jobID string) error {
	userID, ok := s.users.CurrentUserID()
	if !ok {
		return apperrors.NewPreconditionFailedError("User not authenticated", "saving jobs requires a signed-in user")
	}

	saved, err := s.backend.ToggleSavedJob(ctx, userID, jobID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if saved {
		s.saved[jobID] = struct{}{}
	} else {
		delete(s.saved, jobID)
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) IsJobSaved(jobID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.saved[jobID]
	return ok
}

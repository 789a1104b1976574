package application

import (
	"context"
	"sync"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
)

// Catalog is the job store as seen from the job list page.
type Catalog interface {
	LoadJobs(ctx context.Context) error
	GetByID(id string) (models.Job, bool)
	List(filters models.JobFilters) []models.Job
	ApplyJob(ctx context.Context, jobID string, responses []models.ApplicationResponse) error
	ToggleSaveJob(ctx context.Context, jobID string) error
	IsJobSaved(jobID string) bool
}

// Viewer is the signed-in state of whoever is browsing.
type Viewer interface {
	IsLoggedIn() bool
	IsApplicant() bool
}

// Board is the applicant job list: current filters, the filtered results and
// the job whose detail is open.
type Board struct {
	catalog Catalog
	viewer  Viewer
	logger  logger.Logger

	mu       sync.Mutex
	filters  models.JobFilters
	results  []models.Job
	selected string
}

func NewBoard(catalog Catalog, viewer Viewer, log logger.Logger) *Board {
	return &Board{
		catalog: catalog,
		viewer:  viewer,
		logger:  logger.ForComponent(log, "job-board"),
	}
}

// LoadJobs reloads the catalog and re-applies the current filters. The open
// job detail follows the reloaded data.
func (b *Board) LoadJobs(ctx context.Context) error {
	if err := b.catalog.LoadJobs(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = b.catalog.List(b.filters)
	return nil
}

func (b *Board) GetByID(id string) (models.Job, bool) {
	return b.catalog.GetByID(id)
}

func (b *Board) ApplyJob(ctx context.Context, jobID string, responses []models.ApplicationResponse) error {
	return b.catalog.ApplyJob(ctx, jobID, responses)
}

// Search lists jobs by title, location and type. The applicant page has no
// company filter.
func (b *Board) Search(filters models.JobFilters) []models.Job {
	filters.Company = ""

	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = filters
	b.results = b.catalog.List(filters)

	b.logger.Debug("search", map[string]interface{}{
		"title":    filters.Title,
		"location": filters.Location,
		"type":     filters.Type,
		"results":  len(b.results),
	})
	return cloneJobs(b.results)
}

// ResetFilters clears every filter and lists all jobs.
func (b *Board) ResetFilters() []models.Job {
	return b.Search(models.JobFilters{})
}

func (b *Board) Filters() models.JobFilters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

func (b *Board) Results() []models.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneJobs(b.results)
}

// ViewJob opens the detail of a job. It reports false for an unknown id.
func (b *Board) ViewJob(id string) bool {
	if _, ok := b.catalog.GetByID(id); !ok {
		return false
	}
	b.mu.Lock()
	b.selected = id
	b.mu.Unlock()
	return true
}

// SelectedJob returns the open job detail as currently cached.
func (b *Board) SelectedJob() (models.Job, bool) {
	b.mu.Lock()
	id := b.selected
	b.mu.Unlock()

	if id == "" {
		return models.Job{}, false
	}
	return b.catalog.GetByID(id)
}

func (b *Board) CloseJob() {
	b.mu.Lock()
	b.selected = ""
	b.mu.Unlock()
}

// CanSaveJobs reports whether the viewer may keep saved jobs. Only signed-in
// applicants can.
func (b *Board) CanSaveJobs() bool {
	return b.viewer.IsLoggedIn() && b.viewer.IsApplicant()
}

func (b *Board) ToggleSaveJob(ctx context.Context, jobID string) error {
	if !b.CanSaveJobs() {
		return apperrors.NewPreconditionFailedError(MsgSignInToSave, "saving jobs requires a signed-in applicant")
	}
	return b.catalog.ToggleSaveJob(ctx, jobID)
}

func (b *Board) IsJobSaved(jobID string) bool {
	return b.catalog.IsJobSaved(jobID)
}

// JobTypes returns the options for the type filter.
func (b *Board) JobTypes() []models.Option {
	out := make([]models.Option, len(models.JobTypes))
	copy(out, models.JobTypes)
	return out
}

func cloneJobs(in []models.Job) []models.Job {
	out := make([]models.Job, len(in))
	copy(out, in)
	return out
}

// Package authoring is the employer's job posting form: the posting fields,
// the question selector and the create confirmation.
package authoring

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/questions"
)

// User-facing messages.
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgSalaryRange      = "Minimum salary must be less than maximum salary"
	MsgNotAuthenticated = "User not authenticated"
	MsgCreateFailed     = "Failed to create job"
	msgCreateError      = "Error creating job: "
)

// CreatedRoute is where the employer lands after posting.
const CreatedRoute = "/employer-jobs"

// Creator stores a new posting.
type Creator interface {
	Create(ctx context.Context, draft models.JobDraft) (*models.Job, error)
}

// ProfileSource is the signed-in user.
type ProfileSource interface {
	Profile() (models.Profile, bool)
}

// Fields are the free-form posting inputs. Salary bounds are option values;
// zero means not chosen.
type Fields struct {
	Title       string
	Location    string
	Type        string
	Description string
	SalaryMin   int
	SalaryMax   int
}

// Editor holds one job posting form. A failed create leaves every field as it
// was so the employer can retry.
type Editor struct {
	creator   Creator
	profiles  ProfileSource
	companies CompanyLookup
	logger    logger.Logger

	mu         sync.Mutex
	fields     Fields
	company    string
	salary     string
	registry   questions.Registry
	questions  []models.ApplicationQuestion
	errMsg     string
	confirming bool
	busy       bool
}

// NewEditor opens an empty form. registry supplies the question templates
// offered in the selector.
func NewEditor(creator Creator, profiles ProfileSource, companies CompanyLookup, registry questions.Registry, log logger.Logger) *Editor {
	e := &Editor{
		creator:   creator,
		profiles:  profiles,
		companies: companies,
		registry:  registry,
		questions: []models.ApplicationQuestion{},
		logger:    logger.ForComponent(log, "job-authoring"),
	}
	e.company = e.resolveCompany("")
	return e
}

func (e *Editor) resolveCompany(fallback string) string {
	profile, ok := e.profiles.Profile()
	if !ok {
		return fallback
	}
	if c, ok := e.companies.CompanyFor(profile); ok {
		return c
	}
	return fallback
}

func (e *Editor) IsAdmin() bool {
	p, ok := e.profiles.Profile()
	return ok && p.Role == models.RoleAdmin
}

func (e *Editor) SetFields(f Fields) {
	e.mu.Lock()
	e.fields = f
	e.mu.Unlock()
}

func (e *Editor) Fields() Fields {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields
}

func (e *Editor) Company() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.company
}

func (e *Editor) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// ==========================
// Question selector
// ==========================

func (e *Editor) Templates() []models.QuestionTemplate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Templates()
}

func (e *Editor) ToggleTemplate(i int) {
	e.mu.Lock()
	e.registry = e.registry.ToggleSelection(i)
	e.mu.Unlock()
}

func (e *Editor) SetTemplateInput(text string) {
	e.mu.Lock()
	e.registry = e.registry.SetInput(text)
	e.mu.Unlock()
}

// AddTemplate adds the typed custom question to the selector.
func (e *Editor) AddTemplate() {
	e.mu.Lock()
	e.registry = e.registry.AddInput()
	e.mu.Unlock()
}

func (e *Editor) DeleteTemplate(i int) {
	e.mu.Lock()
	e.registry = e.registry.Remove(i)
	e.mu.Unlock()
}

// AddSelectedQuestions copies the selected templates onto the posting.
func (e *Editor) AddSelectedQuestions() {
	e.mu.Lock()
	e.registry, e.questions = e.registry.CommitSelectedToJob(e.questions)
	e.mu.Unlock()
}

func (e *Editor) RemoveQuestion(i int) {
	e.mu.Lock()
	e.questions = questions.RemoveFromJob(e.questions, i)
	e.mu.Unlock()
}

func (e *Editor) Questions() []models.ApplicationQuestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.ApplicationQuestion, len(e.questions))
	copy(out, e.questions)
	return out
}

// ==========================
// Review and create
// ==========================

// Review checks the form and opens the confirmation. It reports false and
// sets Error when a field is missing or the salary range is inverted.
func (e *Editor) Review() bool {
	company := e.resolveCompany(e.Company())

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errMsg = ""
	f := e.fields
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Location) == "" ||
		f.Type == "" || strings.TrimSpace(f.Description) == "" ||
		f.SalaryMin == 0 || f.SalaryMax == 0 {
		e.errMsg = MsgFillAllFields
		return false
	}
	if f.SalaryMin >= f.SalaryMax {
		e.errMsg = MsgSalaryRange
		return false
	}

	e.salary = SalaryRange(f.SalaryMin, f.SalaryMax)
	e.company = company
	e.confirming = true
	return true
}

func (e *Editor) Confirming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirming
}

func (e *Editor) Salary() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.salary
}

func (e *Editor) CancelReview() {
	e.mu.Lock()
	e.confirming = false
	e.mu.Unlock()
}

func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Confirm creates the posting. On success it returns the created job and the
// route to continue to; on failure it returns nil and sets Error.
func (e *Editor) Confirm(ctx context.Context) (*models.Job, string) {
	e.mu.Lock()
	if e.busy || !e.confirming {
		e.mu.Unlock()
		return nil, ""
	}
	e.busy = true
	e.errMsg = ""

	profile, ok := e.profiles.Profile()
	if !ok || profile.UserID == "" {
		e.errMsg = MsgNotAuthenticated
		e.busy = false
		e.mu.Unlock()
		return nil, ""
	}

	draft := models.JobDraft{
		Title:                e.fields.Title,
		Company:              e.company,
		Location:             e.fields.Location,
		Type:                 e.fields.Type,
		Description:          e.fields.Description,
		Salary:               e.salary,
		PostedBy:             profile.UserID,
		ApplicationQuestions: trimQuestions(e.questions),
	}
	e.mu.Unlock()

	job, err := e.creator.Create(ctx, draft)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false

	switch {
	case err != nil:
		e.errMsg = msgCreateError + errorText(err)
		e.logger.Warn("create job failed", map[string]interface{}{
			"title": draft.Title,
			"error": err.Error(),
		})
		return nil, ""
	case job == nil:
		e.errMsg = MsgCreateFailed
		return nil, ""
	}

	e.logger.Info("job created", map[string]interface{}{
		"jobId":     job.ID,
		"company":   job.Company,
		"questions": len(job.ApplicationQuestions),
	})
	e.confirming = false
	return job, CreatedRoute
}

func trimQuestions(in []models.ApplicationQuestion) []models.ApplicationQuestion {
	out := make([]models.ApplicationQuestion, 0, len(in))
	for _, q := range in {
		if t := strings.TrimSpace(q.Question); t != "" {
			out = append(out, models.ApplicationQuestion{Question: t})
		}
	}
	return out
}

// errorText prefers the user-facing message of a StandardError.
func errorText(err error) string {
	var se *apperrors.StandardError
	if stderrors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

package application

import (
	"context"
	"net/url"
	"sync"

	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/identity"
	"jobboard-workers/internal/intent"
	"jobboard-workers/internal/models"
)

// SubmittedProcessID is the workflow started after an application is stored.
const SubmittedProcessID = "application-submitted"

// JobStore is what a session needs from the job list.
type JobStore interface {
	LoadJobs(ctx context.Context) error
	GetByID(id string) (models.Job, bool)
	ApplyJob(ctx context.Context, jobID string, responses []models.ApplicationResponse) error
}

// Identity is the signed-in user, if any.
type Identity interface {
	IsLoggedIn() bool
	CurrentUserID() (string, bool)
}

// ProcessStarter starts a workflow instance. camunda.Client implements it.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error)
}

type Option func(*Session)

// WithProcessStarter starts SubmittedProcessID for every confirmed
// application.
func WithProcessStarter(p ProcessStarter) Option {
	return func(s *Session) { s.events = p }
}

// WithLoginPath overrides where anonymous apply attempts are sent.
func WithLoginPath(path string) Option {
	return func(s *Session) { s.loginPath = path }
}

// Session is one browser's application flow. Only one submission may be in
// flight at a time; other calls stay responsive while it runs.
type Session struct {
	key       string
	jobs      JobStore
	users     Identity
	intents   intent.Store
	events    ProcessStarter
	loginPath string
	logger    logger.Logger

	mu    sync.Mutex
	state State
	busy  bool
	alert string
}

// NewSession creates an idle session. key identifies the browser session and
// scopes the pending apply intent.
func NewSession(key string, jobs JobStore, users Identity, intents intent.Store, log logger.Logger, opts ...Option) *Session {
	s := &Session{
		key:       key,
		jobs:      jobs,
		users:     users,
		intents:   intents,
		loginPath: "/login",
		logger:    logger.ForComponent(log, "application-session"),
		state:     Idle{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply opens the application form for jobID. An anonymous user gets no form:
// the job is remembered and the returned path sends them to sign in with
// applyJobId set. The path is empty when no navigation is needed.
func (s *Session) Apply(ctx context.Context, jobID string) string {
	if !s.users.IsLoggedIn() {
		return s.interrupt(ctx, jobID)
	}
	s.open(jobID)
	return ""
}

func (s *Session) interrupt(ctx context.Context, jobID string) string {
	if err := s.intents.Save(ctx, s.key, jobID); err != nil {
		// The query parameter still carries the job.
		s.logger.Warn("failed to record apply intent", map[string]interface{}{
			"jobId": jobID,
			"error": err.Error(),
		})
	} else {
		metrics.ApplyIntents.WithLabelValues(metrics.IntentRecorded).Inc()
	}

	s.logger.Info("apply requires sign in", map[string]interface{}{"jobId": jobID})
	return s.loginPath + "?" + url.Values{identity.ApplyJobParam: {jobID}}.Encode()
}

// Resume continues an apply that was interrupted by sign in. applyJobID is
// the round-tripped navigation parameter; when it is empty the recorded
// intent is used. The job list is fetched again so the form reflects the
// job's current questions.
func (s *Session) Resume(ctx context.Context, applyJobID string) string {
	recorded, ok, err := s.intents.Consume(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read apply intent", map[string]interface{}{"error": err.Error()})
	}

	jobID := applyJobID
	if jobID == "" && ok {
		jobID = recorded
	}
	if jobID == "" {
		metrics.ApplyIntents.WithLabelValues(metrics.IntentMissing).Inc()
		return ""
	}

	if !s.users.IsLoggedIn() {
		return s.interrupt(ctx, jobID)
	}

	if err := s.jobs.LoadJobs(ctx); err != nil {
		s.logger.Warn("reload before resume failed", map[string]interface{}{
			"jobId": jobID,
			"error": err.Error(),
		})
	}

	metrics.ApplyIntents.WithLabelValues(metrics.IntentResumed).Inc()
	s.open(jobID)
	return ""
}

func (s *Session) open(jobID string) {
	job, found := s.jobs.GetByID(jobID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return
	}
	if !found {
		s.state = Close()
		s.alert = MsgJobUnavailable
		s.logger.Warn("apply to unknown job", map[string]interface{}{"jobId": jobID})
		return
	}
	s.state = Open(job)
}

// SetAnswer records the answer to the i-th question of the open form.
func (s *Session) SetAnswer(i int, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.state.(Collecting); ok {
		s.state = c.Answer(i, answer)
	}
}

// Submit validates and sends the open form. It returns the resulting state.
// A second call while a submission is in flight does nothing.
func (s *Session) Submit(ctx context.Context) State {
	s.mu.Lock()
	c, ok := s.state.(Collecting)
	if s.busy || !ok {
		st := s.state
		s.mu.Unlock()
		return st
	}

	next, msg := Validate(c.Submit())
	s.state = next
	s.alert = msg

	sub, ok := next.(Submitting)
	if !ok {
		if next.Kind() == KindFailed {
			metrics.Applications.WithLabelValues(metrics.OutcomeFailed).Inc()
		} else {
			metrics.Applications.WithLabelValues(metrics.OutcomeRejected).Inc()
		}
		s.mu.Unlock()
		return next
	}
	s.busy = true
	s.mu.Unlock()

	err := s.jobs.ApplyJob(ctx, sub.JobID, sub.Responses)
	if err != nil {
		s.logger.Warn("application failed", map[string]interface{}{
			"jobId": sub.JobID,
			"error": err.Error(),
		})
		metrics.Applications.WithLabelValues(metrics.OutcomeFailed).Inc()
	} else {
		s.afterSubmit(ctx, sub)
		metrics.Applications.WithLabelValues(metrics.OutcomeConfirmed).Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.state, s.alert = Resolve(sub, err)
	return s.state
}

func (s *Session) afterSubmit(ctx context.Context, sub Submitting) {
	if err := s.jobs.LoadJobs(ctx); err != nil {
		s.logger.Warn("refresh after apply failed", map[string]interface{}{"error": err.Error()})
	}

	if s.events == nil {
		return
	}
	userID, _ := s.users.CurrentUserID()
	key, err := s.events.StartProcess(ctx, SubmittedProcessID, map[string]interface{}{
		"jobId":     sub.JobID,
		"userId":    userID,
		"responses": sub.Responses,
	})
	if err != nil {
		s.logger.Warn("failed to start submitted workflow", map[string]interface{}{
			"jobId": sub.JobID,
			"error": err.Error(),
		})
		return
	}
	s.logger.Debug("submitted workflow started", map[string]interface{}{
		"jobId":              sub.JobID,
		"processInstanceKey": key,
	})
}

// Close returns to Idle and drops any answers. It has no effect while a
// submission is in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return
	}
	s.state = Close()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Responses returns the answers of the open form, or nil when no form is
// open.
func (s *Session) Responses() []models.ApplicationResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.state.(Collecting); ok {
		return cloneResponses(c.Responses)
	}
	return nil
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) Alert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

func (s *Session) CloseAlert() {
	s.mu.Lock()
	s.alert = ""
	s.mu.Unlock()
}

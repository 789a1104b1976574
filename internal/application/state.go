// Package application holds the applicant side of the job board: the
// application session state machine and the job list it is opened from.
package application

import (
	"strings"

	"jobboard-workers/internal/models"
)

// User-facing messages.
const (
	MsgAnswerAll      = "Please answer all required questions."
	MsgUnableToSubmit = "Unable to submit application. Please try again."
	MsgApplyFailed    = "Failed to apply. You may have already applied to this job."
	MsgJobUnavailable = "This job is no longer available."
	MsgSignInToSave   = "Please sign in as an applicant to save jobs."
)

// Kind names a session state.
type Kind int

const (
	KindIdle Kind = iota
	KindCollecting
	KindValidating
	KindSubmitting
	KindConfirmed
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindCollecting:
		return "collecting"
	case KindValidating:
		return "validating"
	case KindSubmitting:
		return "submitting"
	case KindConfirmed:
		return "confirmed"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is one of Idle, Collecting, Validating, Submitting, Confirmed or
// Failed. Transitions are plain functions returning the next state; none of
// them mutate their receiver.
type State interface {
	Kind() Kind
}

type Idle struct{}

// Collecting holds the answers being typed for JobID, in the job's question
// order.
type Collecting struct {
	JobID     string
	Responses []models.ApplicationResponse
}

type Validating struct {
	JobID     string
	Responses []models.ApplicationResponse
}

type Submitting struct {
	JobID     string
	Responses []models.ApplicationResponse
}

// Confirmed keeps what was submitted until the session is closed.
type Confirmed struct {
	JobID     string
	Submitted []models.ApplicationResponse
}

type Failed struct {
	JobID   string
	Message string
}

func (Idle) Kind() Kind       { return KindIdle }
func (Collecting) Kind() Kind { return KindCollecting }
func (Validating) Kind() Kind { return KindValidating }
func (Submitting) Kind() Kind { return KindSubmitting }
func (Confirmed) Kind() Kind  { return KindConfirmed }
func (Failed) Kind() Kind     { return KindFailed }

// Open starts collecting answers for job: one empty response per question,
// in stored order. A job without questions opens with no responses.
func Open(job models.Job) Collecting {
	responses := make([]models.ApplicationResponse, len(job.ApplicationQuestions))
	for i, q := range job.ApplicationQuestions {
		responses[i] = models.ApplicationResponse{Question: q.Question}
	}
	return Collecting{JobID: job.ID, Responses: responses}
}

// Answer sets the answer at index i. Out of range indices are ignored.
func (c Collecting) Answer(i int, answer string) Collecting {
	if i < 0 || i >= len(c.Responses) {
		return c
	}
	next := Collecting{JobID: c.JobID, Responses: cloneResponses(c.Responses)}
	next.Responses[i].Answer = answer
	return next
}

// Submit moves the answers to validation.
func (c Collecting) Submit() Validating {
	return Validating{JobID: c.JobID, Responses: cloneResponses(c.Responses)}
}

// Validate returns Collecting with an alert when an answer is blank, Failed
// when the target job is unknown, and Submitting otherwise.
func Validate(v Validating) (State, string) {
	if !AllAnswered(v.Responses) {
		return Collecting{JobID: v.JobID, Responses: v.Responses}, MsgAnswerAll
	}
	if v.JobID == "" {
		return Failed{Message: MsgUnableToSubmit}, MsgUnableToSubmit
	}
	return Submitting{JobID: v.JobID, Responses: v.Responses}, ""
}

// Resolve applies the store's answer to a submission.
func Resolve(s Submitting, err error) (State, string) {
	if err != nil {
		return Failed{JobID: s.JobID, Message: MsgApplyFailed}, MsgApplyFailed
	}
	return Confirmed{JobID: s.JobID, Submitted: s.Responses}, ""
}

// Close discards everything.
func Close() Idle {
	return Idle{}
}

// AllAnswered reports whether every response has a non-blank answer.
func AllAnswered(responses []models.ApplicationResponse) bool {
	for _, r := range responses {
		if strings.TrimSpace(r.Answer) == "" {
			return false
		}
	}
	return true
}

func cloneResponses(in []models.ApplicationResponse) []models.ApplicationResponse {
	out := make([]models.ApplicationResponse, len(in))
	copy(out, in)
	return out
}

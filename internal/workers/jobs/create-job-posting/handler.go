// internal/workers/jobs/create-job-posting/handler.go
package createjobposting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/validation"
	"jobboard-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-job-posting"
)

var (
	ErrInvalidInput         = errors.New("VALIDATION_FAILED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

var schema = validation.MustCompile(TaskType, inputSchema)

type JobCreator interface {
	CreateJob(ctx context.Context, draft models.JobDraft) (*models.Job, error)
}

type JobIndexer interface {
	IndexJob(ctx context.Context, job models.Job) error
}

type Handler struct {
	config  *Config
	store   JobCreator
	indexer JobIndexer
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

// NewHandler builds the handler. indexer may be nil when search is not
// deployed.
func NewHandler(config *Config, store JobCreator, indexer JobIndexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		store:   store,
		indexer: indexer,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidInput, apperrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	result, err := schema.Validate(input)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput,
			apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; ")))
	}

	draft := *input
	draft.ApplicationQuestions = trimQuestions(input.ApplicationQuestions)

	created, err := h.store.CreateJob(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseInsertFailed, err)
	}

	// The index is a read replica of the store; a miss here is repaired by
	// the next reindex and must not fail the posting.
	indexed := false
	if h.indexer != nil {
		if err := h.indexer.IndexJob(ctx, *created); err != nil {
			h.logger.Warn("job indexing failed", map[string]interface{}{
				"jobId": created.ID,
				"error": err.Error(),
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("job posting created", map[string]interface{}{
		"jobId":     created.ID,
		"company":   created.Company,
		"questions": len(created.ApplicationQuestions),
	})

	return &Output{
		JobID:         created.ID,
		QuestionCount: len(created.ApplicationQuestions),
		Indexed:       indexed,
		CreatedAt:     created.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
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

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// internal/workers/application/submit-application/handler.go
package submitapplication

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
	TaskType = "submit-application"
)

var (
	ErrInvalidInput         = errors.New("VALIDATION_FAILED")
	ErrJobNotFound          = errors.New("JOB_NOT_FOUND")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

var schema = validation.MustCompile(TaskType, inputSchema)

// ApplicationStore records applications. postgres.Store implements it.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, jobID, userID string, responses []models.ApplicationResponse) (*models.Application, error)
}

type Handler struct {
	config *Config
	store  ApplicationStore
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, store ApplicationStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
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
	if input.Responses == nil {
		input.Responses = []models.ApplicationResponse{}
	}

	result, err := schema.Validate(input)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput,
			apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; ")))
	}

	app, err := h.store.CreateApplication(ctx, input.JobID, input.UserID, input.Responses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentinelFor(err), err)
	}

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": app.ID,
		"jobId":         input.JobID,
		"userId":        input.UserID,
		"responses":     len(input.Responses),
	})

	return &Output{
		ApplicationID:     app.ID,
		ApplicationStatus: app.Status,
		CreatedAt:         app.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func sentinelFor(err error) error {
	switch apperrors.Normalize(err).Code {
	case apperrors.ErrCodeDuplicateApplication:
		return ErrDuplicateApplication
	case apperrors.ErrCodeJobNotFound:
		return ErrJobNotFound
	default:
		return ErrDatabaseInsertFailed
	}
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

	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

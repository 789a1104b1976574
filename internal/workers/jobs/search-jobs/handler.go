// internal/workers/jobs/search-jobs/handler.go
package searchjobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/validation"
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/store/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-jobs"
)

var (
	ErrInvalidInput      = errors.New("VALIDATION_FAILED")
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
)

var schema = validation.MustCompile(TaskType, inputSchema)

// Searcher lists jobs from the index. search.Index implements it.
type Searcher interface {
	Search(ctx context.Context, f models.JobFilters, page search.Page) (*search.Result, error)
}

type Handler struct {
	config   *Config
	searcher Searcher
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		searcher: searcher,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
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

	res, err := h.searcher.Search(ctx, input.Filters, input.Pagination)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %w", ErrSearchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrSearchQueryFailed, err)
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"totalHits": res.Total,
		"returned":  len(res.Jobs),
	})

	return &Output{
		Jobs:      res.Jobs,
		TotalHits: res.Total,
		Took:      res.Took,
	}, nil
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

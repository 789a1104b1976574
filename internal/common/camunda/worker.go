// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"jobboard-workers/internal/common/config"
	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/common/metrics"
	"jobboard-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Handler errors are already
// reported to the broker by the handler itself; here they only feed metrics.
func NewWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			start := time.Now()
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

			status := "completed"
			if err := handler.Handle(jc, job); err != nil {
				status = "failed"
				code := string(apperrors.Normalize(err).Code)
				metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
				log.Error("handler returned error", map[string]interface{}{
					"jobKey":    job.Key,
					"errorCode": code,
					"error":     err.Error(),
				})
			} else {
				metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			}

			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			obs.RecordJobProcessed(context.Background(), taskType, status)
			obs.RecordJobDuration(context.Background(), taskType, elapsed, status)
		}).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{"maxJobsActive": cfg.MaxJobsActive})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

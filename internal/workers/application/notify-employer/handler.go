// internal/workers/application/notify-employer/handler.go
package notifyemployer

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
	"jobboard-workers/internal/identity"
	"jobboard-workers/internal/store/postgres"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-employer"
)

var (
	ErrInvalidInput           = errors.New("VALIDATION_FAILED")
	ErrJobNotFound            = errors.New("JOB_NOT_FOUND")
	ErrRecipientLookupFailed  = errors.New("RECIPIENT_LOOKUP_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

var schema = validation.MustCompile(TaskType, inputSchema)

// Interfaces for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type OwnerSource interface {
	JobOwner(ctx context.Context, jobID string) (*postgres.JobOwner, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*identity.User, error)
}

type Handler struct {
	config    *Config
	owners    OwnerSource
	users     UserDirectory
	sesClient SESService
	snsClient SNSService
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, owners OwnerSource, users UserDirectory, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		owners:    owners,
		users:     users,
		sesClient: sesClient,
		snsClient: snsClient,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		now:       time.Now,
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
	result, err := schema.Validate(input)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput,
			apperrors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; ")))
	}

	owner, err := h.owners.JobOwner(ctx, input.JobID)
	if err != nil {
		if errors.Is(err, &apperrors.StandardError{Code: apperrors.ErrCodeJobNotFound}) {
			return nil, fmt.Errorf("%w: %w", ErrJobNotFound, err)
		}
		return nil, err
	}

	employer, err := h.users.GetUser(ctx, owner.PostedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecipientLookupFailed, err)
	}

	notifiedAt := h.now().UTC().Format(time.RFC3339)
	out := &Output{NotificationStatus: StatusDisabled, NotifiedAt: notifiedAt}
	var failures []string

	if h.config.EmailEnabled && employer.Email != "" {
		id, err := h.sendEmail(ctx, employer, owner)
		if err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":      err.Error(),
				"employerId": owner.PostedBy,
			})
			failures = append(failures, "email")
		} else {
			out.EmailMessageID = id
		}
	}

	if h.config.EventsEnabled {
		id, err := h.publishEvent(ctx, input, owner, notifiedAt)
		if err != nil {
			h.logger.Error("event publish failed", map[string]interface{}{
				"error": err.Error(),
				"jobId": input.JobID,
			})
			failures = append(failures, "event")
		} else {
			out.EventMessageID = id
		}
	}

	sent := out.EmailMessageID != "" || out.EventMessageID != ""
	switch {
	case len(failures) > 0 && !sent:
		return nil, fmt.Errorf("%w: %w", ErrNotificationSendFailed,
			apperrors.NewNotificationSendFailedError(strings.Join(failures, ","), errors.New("all channels failed")))
	case len(failures) > 0:
		out.NotificationStatus = StatusPartial
	case sent:
		out.NotificationStatus = StatusSent
	}

	h.logger.Info("employer notified", map[string]interface{}{
		"jobId":      input.JobID,
		"employerId": owner.PostedBy,
		"status":     out.NotificationStatus,
	})
	return out, nil
}

func (h *Handler) sendEmail(ctx context.Context, employer *identity.User, owner *postgres.JobOwner) (string, error) {
	name := strings.TrimSpace(employer.FirstName)
	if name == "" {
		name = "there"
	}
	subject := fmt.Sprintf("New application for %s", owner.Title)
	body := fmt.Sprintf("Hi %s,\n\nSomeone just applied to %s at %s. Sign in to review their answers.\n",
		name, owner.Title, owner.Company)

	res, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{employer.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(res.MessageId), nil
}

func (h *Handler) publishEvent(ctx context.Context, input *Input, owner *postgres.JobOwner, at string) (string, error) {
	payload, err := json.Marshal(ApplicationEvent{
		Type:          "application.submitted",
		JobID:         input.JobID,
		JobTitle:      owner.Title,
		Company:       owner.Company,
		EmployerID:    owner.PostedBy,
		ApplicantID:   input.UserID,
		ApplicationID: input.ApplicationID,
		OccurredAt:    at,
	})
	if err != nil {
		return "", err
	}

	res, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(res.MessageId), nil
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

// internal/workers/application/notify-employer/models.go
package notifyemployer

type Input struct {
	JobID         string `json:"jobId"`
	UserID        string `json:"userId"`
	ApplicationID string `json:"applicationId,omitempty"`
}

type Output struct {
	NotificationStatus string `json:"notificationStatus"`
	EmailMessageID     string `json:"emailMessageId,omitempty"`
	EventMessageID     string `json:"eventMessageId,omitempty"`
	NotifiedAt         string `json:"notifiedAt"`
}

const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

// ApplicationEvent is published to the applications topic.
type ApplicationEvent struct {
	Type          string `json:"type"`
	JobID         string `json:"jobId"`
	JobTitle      string `json:"jobTitle"`
	Company       string `json:"company"`
	EmployerID    string `json:"employerId"`
	ApplicantID   string `json:"applicantId"`
	ApplicationID string `json:"applicationId,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}

const inputSchema = `{
  "type": "object",
  "required": ["jobId", "userId"],
  "properties": {
    "jobId":         {"type": "string", "minLength": 1},
    "userId":        {"type": "string", "minLength": 1},
    "applicationId": {"type": "string"}
  }
}`

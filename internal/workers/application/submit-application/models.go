// internal/workers/application/submit-application/models.go
package submitapplication

import "jobboard-workers/internal/models"

type Input struct {
	JobID     string                       `json:"jobId"`
	UserID    string                       `json:"userId"`
	Responses []models.ApplicationResponse `json:"responses"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}

const inputSchema = `{
  "type": "object",
  "required": ["jobId", "userId", "responses"],
  "properties": {
    "jobId":  {"type": "string", "minLength": 1},
    "userId": {"type": "string", "minLength": 1},
    "responses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "answer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "answer":   {"type": "string"}
        }
      }
    }
  }
}`

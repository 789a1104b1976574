// internal/workers/jobs/create-job-posting/models.go
package createjobposting

import "jobboard-workers/internal/models"

type Input = models.JobDraft

type Output struct {
	JobID         string `json:"jobId"`
	QuestionCount int    `json:"questionCount"`
	Indexed       bool   `json:"indexed"`
	CreatedAt     string `json:"createdAt"` // ISO 8601
}

const inputSchema = `{
  "type": "object",
  "required": ["title", "company", "location", "type", "description", "salary", "postedBy"],
  "properties": {
    "title":       {"type": "string", "minLength": 1, "maxLength": 200},
    "company":     {"type": "string", "minLength": 1, "maxLength": 200},
    "location":    {"type": "string", "minLength": 1, "maxLength": 200},
    "type":        {"type": "string", "minLength": 1},
    "description": {"type": "string", "minLength": 1},
    "salary":      {"type": "string", "minLength": 1},
    "postedBy":    {"type": "string", "minLength": 1},
    "applicationQuestions": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["question"],
        "properties": {"question": {"type": "string"}}
      }
    }
  }
}`

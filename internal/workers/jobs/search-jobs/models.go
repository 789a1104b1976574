// internal/workers/jobs/search-jobs/models.go
package searchjobs

import (
	"jobboard-workers/internal/models"
	"jobboard-workers/internal/store/search"
)

type Input struct {
	Filters    models.JobFilters `json:"filters"`
	Pagination search.Page       `json:"pagination"`
}

type Output struct {
	Jobs      []models.Job `json:"jobs"`
	TotalHits int64        `json:"totalHits"`
	Took      int64        `json:"took"`
}

const inputSchema = `{
  "type": "object",
  "properties": {
    "filters": {
      "type": "object",
      "properties": {
        "title":    {"type": "string", "maxLength": 200},
        "company":  {"type": "string", "maxLength": 200},
        "location": {"type": "string", "maxLength": 200},
        "type":     {"type": "string", "maxLength": 100}
      }
    },
    "pagination": {
      "type": "object",
      "properties": {
        "from": {"type": "integer", "minimum": 0},
        "size": {"type": "integer", "minimum": 0, "maximum": 100}
      }
    }
  }
}`

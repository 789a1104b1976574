// Package search runs job listings against the Elasticsearch jobs index.
package search

import (
	"strings"

	"jobboard-workers/internal/models"
)

const (
	defaultSize = 20
	maxSize     = 100
)

// Page selects a window of results.
type Page struct {
	From int `json:"from"`
	Size int `json:"size"`
}

func (p Page) normalize() Page {
	if p.From < 0 {
		p.From = 0
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// BuildQuery turns listing filters into a bool query. Title, company and
// location match as case-insensitive substrings, type matches exactly.
// Newest postings come first.
func BuildQuery(f models.JobFilters) map[string]interface{} {
	filter := []interface{}{}

	for _, field := range []struct{ name, value string }{
		{"title", f.Title},
		{"company", f.Company},
		{"location", f.Location},
	} {
		v := strings.TrimSpace(field.value)
		if v == "" {
			continue
		}
		filter = append(filter, map[string]interface{}{
			"wildcard": map[string]interface{}{
				field.name: map[string]interface{}{
					"value":            "*" + escapeWildcard(v) + "*",
					"case_insensitive": true,
				},
			},
		})
	}

	if f.Type != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"type": f.Type},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filter) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filter},
		}
	}

	return map[string]interface{}{
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

// Mapping is the jobs index definition. Text fields are keywords so that
// wildcard queries see the whole value.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "title":          {"type": "keyword"},
      "company":        {"type": "keyword"},
      "location":       {"type": "keyword"},
      "type":           {"type": "keyword"},
      "description":    {"type": "text"},
      "salary":         {"type": "keyword"},
      "postedBy":       {"type": "keyword"},
      "applicantCount": {"type": "integer"},
      "createdAt":      {"type": "date"},
      "applicationQuestions": {
        "properties": {"question": {"type": "text"}}
      }
    }
  }
}`

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Result is one page of matching jobs.
type Result struct {
	Jobs  []models.Job `json:"jobs"`
	Total int64        `json:"total"`
	Took  int64        `json:"took"`
}

// Index reads and writes job documents.
type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	return &Index{
		client: client,
		name:   name,
		logger: logger.ForComponent(log, "job-search"),
	}
}

// EnsureIndex creates the index with Mapping when it does not exist.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.name}}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: i.name,
		Body:  strings.NewReader(Mapping),
	}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(fmt.Errorf("create index %s: %s", i.name, res.String()))
	}
	i.logger.Info("created jobs index", map[string]interface{}{"index": i.name})
	return nil
}

// IndexJob writes job under its id, replacing an earlier version.
func (i *Index) IndexJob(ctx context.Context, job models.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: job.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError(fmt.Errorf("index job %s: %s", job.ID, res.String()))
	}
	return nil
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.Job `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search lists jobs matching f.
func (i *Index) Search(ctx context.Context, f models.JobFilters, page Page) (*Result, error) {
	page = page.normalize()

	body, err := json.Marshal(BuildQuery(f))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  bytes.NewReader(body),
		From:  &page.From,
		Size:  &page.Size,
	}.Do(ctx, i.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewTimeoutError("elasticsearch", err)
		}
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("search %s: %s", i.name, res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("decode response: %w", err))
	}

	jobs := make([]models.Job, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		if h.Source.ApplicationQuestions == nil {
			h.Source.ApplicationQuestions = []models.ApplicationQuestion{}
		}
		jobs = append(jobs, h.Source)
	}

	i.logger.Debug("search completed", map[string]interface{}{
		"total": r.Hits.Total.Value,
		"took":  r.Took,
	})
	return &Result{Jobs: jobs, Total: r.Hits.Total.Value, Took: r.Took}, nil
}

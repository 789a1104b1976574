// Package postgres is the job store backed by PostgreSQL: postings,
// submitted applications and saved jobs.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobboard-workers/internal/common/logger"
)

// Schema creates the tables the store needs. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id                    UUID PRIMARY KEY,
	title                 TEXT NOT NULL,
	company               TEXT NOT NULL DEFAULT '',
	location              TEXT NOT NULL,
	type                  TEXT NOT NULL,
	description           TEXT NOT NULL,
	salary                TEXT NOT NULL,
	posted_by             TEXT NOT NULL,
	application_questions JSONB NOT NULL DEFAULT '[]',
	applicant_count       INTEGER NOT NULL DEFAULT 0,
	created_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	id         UUID PRIMARY KEY,
	job_id     UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	responses  JSONB NOT NULL DEFAULT '[]',
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (job_id, user_id)
);

CREATE TABLE IF NOT EXISTS saved_jobs (
	user_id    TEXT NOT NULL,
	job_id     UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, job_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id            BIGSERIAL PRIMARY KEY,
	event_type    TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	details       JSONB,
	created_at    TIMESTAMPTZ NOT NULL
);
`

type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.ForComponent(log, "job-store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// audit records an event. Failures are logged, never returned.
func (s *Store) audit(ctx context.Context, eventType, resourceType, resourceID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType, resourceType, resourceID, detailsJSON, s.now(),
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err.Error(),
			"eventType":  eventType,
			"resourceId": resourceID,
		})
	}
}

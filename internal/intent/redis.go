package intent

import (
	"context"
	"errors"
	"time"

	apperrors "jobboard-workers/internal/common/errors"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "apply-intent:"

// RedisStore keeps intents in Redis with a TTL. Consume uses GETDEL so two
// concurrent resumes cannot both see the same intent.
type RedisStore struct {
	rdb    goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb goredis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, key, jobID string) error {
	if err := r.rdb.Set(ctx, r.prefix+key, jobID, r.ttl).Err(); err != nil {
		return apperrors.NewIntentStoreFailedError(err)
	}
	return nil
}

func (r *RedisStore) Consume(ctx context.Context, key string) (string, bool, error) {
	jobID, err := r.rdb.GetDel(ctx, r.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewIntentStoreFailedError(err)
	}
	return jobID, true, nil
}

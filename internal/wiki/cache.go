package wiki

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"wikirelay/internal/logger"
)

const fileURLKeyPrefix = "wikirelay:file:"

// CachedFileRepo is a read-through Redis cache in front of a FileRepo.
// Upload URLs are stable until a file is re-uploaded, so a short TTL
// keeps the hot path off the replica without serving stale links for
// long.
type CachedFileRepo struct {
	inner  FileRepo
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedFileRepo(inner FileRepo, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedFileRepo {
	return &CachedFileRepo{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachedFileRepo) FileURL(ctx context.Context, title string) (string, error) {
	key := fileURLKeyPrefix + fileName(title)

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return val, nil
	}
	if err != redis.Nil {
		c.logger.WarnwCtx(ctx, "File URL cache read failed, falling back to replica",
			"error", err,
			"title", title,
		)
	}

	url, err := c.inner.FileURL(ctx, title)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, url, c.ttl).Err(); err != nil {
		c.logger.WarnwCtx(ctx, "File URL cache write failed",
			"error", err,
			"title", title,
		)
	}

	return url, nil
}

package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IssueAPI is the read surface the reconciliation engine consumes. Client
// implements it directly; Cache wraps another implementation.
type IssueAPI interface {
	ListOpenIssues(ctx context.Context, projectID int) ([]Issue, error)
	GetIssue(ctx context.Context, projectID, iid int) (*Issue, error)
	ListLinks(ctx context.Context, projectID, iid int) ([]IssueLink, error)
}

var _ IssueAPI = (*Client)(nil)

// Cache memoizes issue and link fetches in Redis for a short TTL, damping
// the fan-out of back-to-back syncs. Listings are never cached; the seed
// fetch of an import must always see fresh state. A Redis failure degrades
// to a direct fetch.
type Cache struct {
	next   IssueAPI
	redis  *redislib.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache wraps next with a Redis read cache.
func NewCache(next IssueAPI, client *redislib.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

var _ IssueAPI = (*Cache)(nil)

func (c *Cache) ListOpenIssues(ctx context.Context, projectID int) ([]Issue, error) {
	return c.next.ListOpenIssues(ctx, projectID)
}

func (c *Cache) GetIssue(ctx context.Context, projectID, iid int) (*Issue, error) {
	key := fmt.Sprintf("gitlab:issue:%d:%d", projectID, iid)

	var cached Issue
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	issue, err := c.next.GetIssue(ctx, projectID, iid)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, issue)
	return issue, nil
}

func (c *Cache) ListLinks(ctx context.Context, projectID, iid int) ([]IssueLink, error) {
	key := fmt.Sprintf("gitlab:links:%d:%d", projectID, iid)

	var cached []IssueLink
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	links, err := c.next.ListLinks(ctx, projectID, iid)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, links)
	return links, nil
}

func (c *Cache) lookup(ctx context.Context, key string, out interface{}) bool {
	result, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redislib.Nil {
			c.logger.Debug("tracker cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(result), out); err != nil {
		c.logger.Warn("dropping corrupt tracker cache entry", zap.String("key", key), zap.Error(err))
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("tracker cache store failed", zap.String("key", key), zap.Error(err))
	}
}

package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/course-service/internal/domain"
)

const (
	publishedTagsKey    = "courses:published:tags"
	publishedCoursesKey = "courses:published:list"
)

// RedisCourseCache caches published course listings and tags in Redis.
type RedisCourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCourseCache builds a cache over the given client.
func NewRedisCourseCache(client *redis.Client, ttl time.Duration) *RedisCourseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCourseCache{client: client, ttl: ttl}
}

// GetTags returns cached tags. ok is false on a cache miss.
func (c *RedisCourseCache) GetTags(ctx context.Context) ([]string, bool, error) {
	var tags []string
	ok, err := c.get(ctx, publishedTagsKey, &tags)
	return tags, ok, err
}

// SetTags stores tags.
func (c *RedisCourseCache) SetTags(ctx context.Context, tags []string) error {
	return c.set(ctx, publishedTagsKey, tags)
}

// GetPublished returns the cached unfiltered published listing.
func (c *RedisCourseCache) GetPublished(ctx context.Context) ([]domain.Course, bool, error) {
	var courses []domain.Course
	ok, err := c.get(ctx, publishedCoursesKey, &courses)
	return courses, ok, err
}

// SetPublished stores the unfiltered published listing.
func (c *RedisCourseCache) SetPublished(ctx context.Context, courses []domain.Course) error {
	return c.set(ctx, publishedCoursesKey, courses)
}

// Invalidate drops every cached listing.
func (c *RedisCourseCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, publishedTagsKey, publishedCoursesKey).Err()
}

func (c *RedisCourseCache) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCourseCache) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillsphere/web/internal/core/domain"
)

const (
	defaultCacheTTL     = time.Minute
	enrollmentsPrefix   = "cache:enrollments:"
	instructorPrefix    = "cache:instructor-courses:"
	invalidateScanBatch = 100
)

// CourseCache stores per-user course lists fetched from the backend.
// Key format: cache:enrollments:<email>, cache:instructor-courses:<email>
type CourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCourseCache creates a CourseCache whose entries expire after ttl.
func NewCourseCache(client *redis.Client, ttl time.Duration) *CourseCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CourseCache{client: client, ttl: ttl}
}

func (c *CourseCache) GetEnrollments(ctx context.Context, email string) ([]domain.Enrollment, bool, error) {
	var items []domain.Enrollment
	ok, err := c.get(ctx, enrollmentsPrefix+normalizeEmail(email), &items)
	return items, ok, err
}

func (c *CourseCache) SetEnrollments(ctx context.Context, email string, items []domain.Enrollment) error {
	return c.set(ctx, enrollmentsPrefix+normalizeEmail(email), items)
}

func (c *CourseCache) GetInstructorCourses(ctx context.Context, email string) ([]domain.Course, bool, error) {
	var items []domain.Course
	ok, err := c.get(ctx, instructorPrefix+normalizeEmail(email), &items)
	return items, ok, err
}

func (c *CourseCache) SetInstructorCourses(ctx context.Context, email string, items []domain.Course) error {
	return c.set(ctx, instructorPrefix+normalizeEmail(email), items)
}

// Invalidate drops every cached list. Course details are embedded in
// enrollment lists, so an edit to any course stales all of them.
func (c *CourseCache) Invalidate(ctx context.Context) error {
	for _, prefix := range []string{enrollmentsPrefix, instructorPrefix} {
		iter := c.client.Scan(ctx, 0, prefix+"*", invalidateScanBatch).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache invalidate: %w", err)
		}
	}
	return nil
}

func (c *CourseCache) get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A payload we can no longer decode is treated as a miss.
		return false, nil
	}
	return true, nil
}

func (c *CourseCache) set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillsphere/web/internal/core/domain"
)

const flashTTL = 5 * time.Minute

// FlashStore keeps one-shot toast messages per browser session.
// Key format: flash:<sid> (a list, oldest first)
type FlashStore struct {
	client *redis.Client
}

// NewFlashStore creates a FlashStore wrapping the given Redis client.
func NewFlashStore(client *redis.Client) *FlashStore {
	return &FlashStore{client: client}
}

// Push appends f to the pending messages of sid.
func (s *FlashStore) Push(ctx context.Context, sid string, f domain.Flash) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("flash encode: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key(sid), payload)
	pipe.Expire(ctx, s.key(sid), flashTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("flash push: %w", err)
	}
	return nil
}

// Pop returns and clears the pending messages of sid.
func (s *FlashStore) Pop(ctx context.Context, sid string) ([]domain.Flash, error) {
	pipe := s.client.TxPipeline()
	items := pipe.LRange(ctx, s.key(sid), 0, -1)
	pipe.Del(ctx, s.key(sid))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("flash pop: %w", err)
	}

	raw := items.Val()
	out := make([]domain.Flash, 0, len(raw))
	for _, r := range raw {
		var f domain.Flash
		if err := json.Unmarshal([]byte(r), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *FlashStore) key(sid string) string {
	return "flash:" + sid
}

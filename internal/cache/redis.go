package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/ui-feedback/internal/model"
)

const defaultPrefix = "ui_feedback"

// Redis caches the user list as one JSON value with a TTL.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedis returns a cache storing the list under "<prefix>:users:list".
// A non-positive ttl disables writes, so Get always misses.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{
		client: client,
		key:    prefix + ":users:list",
		ttl:    ttl,
	}
}

// cachedUser mirrors model.User including the ID, which model.User hides
// from JSON.
type cachedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Redis) Get(ctx context.Context) ([]model.User, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading %s: %w", c.key, err)
	}

	var cached []cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("cache: decoding %s: %w", c.key, err)
	}

	users := make([]model.User, 0, len(cached))
	for _, u := range cached {
		users = append(users, model.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
	}
	return users, true, nil
}

func (c *Redis) Set(ctx context.Context, users []model.User) error {
	if c.ttl <= 0 {
		return nil
	}

	cached := make([]cachedUser, 0, len(users))
	for _, u := range users {
		cached = append(cached, cachedUser{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("cache: encoding user list: %w", err)
	}

	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: writing %s: %w", c.key, err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("cache: deleting %s: %w", c.key, err)
	}
	return nil
}

package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "conversation:state"

// RedisStore keeps states in Redis so dialogues survive a restart.
// Every write refreshes the TTL; abandoned dialogues expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis connects to the server described by url and checks it with a ping
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func stateKey(userID int64) string {
	return fmt.Sprintf("%s:%d", stateKeyPrefix, userID)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (State, bool, error) {
	raw, err := r.client.Get(ctx, stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		slog.Error("conversation: Failed to read state", "error", err, "user_id", userID)
		return State{}, false, fmt.Errorf("%w: %w", ErrStateBackend, err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		// A state we cannot read is as good as no state
		slog.Warn("conversation: Dropping unreadable state", "error", err, "user_id", userID)
		_ = r.client.Del(ctx, stateKey(userID)).Err()
		return State{}, false, nil
	}
	return state, true, nil
}

func (r *RedisStore) Set(ctx context.Context, userID int64, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := r.client.Set(ctx, stateKey(userID), raw, r.ttl).Err(); err != nil {
		slog.Error("conversation: Failed to write state", "error", err, "user_id", userID)
		return fmt.Errorf("%w: %w", ErrStateBackend, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		slog.Error("conversation: Failed to clear state", "error", err, "user_id", userID)
		return fmt.Errorf("%w: %w", ErrStateBackend, err)
	}
	return nil
}

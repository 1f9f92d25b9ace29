package securityconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	rulesKey          = "navbat:security:rules"
	maxUpdateAttempts = 5
)

// ErrContention is returned when optimistic updates keep losing the race.
var ErrContention = errors.New("security rules update contended")

// RedisStore keeps the rules as one JSON value so every instance reads the
// same set. Updates use WATCH/MULTI.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context) (Rules, error) {
	return s.read(ctx, s.client)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c getter) (Rules, error) {
	raw, err := c.Get(ctx, rulesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Defaults(), nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("read security rules: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(raw, &rules); err != nil {
		return Rules{}, fmt.Errorf("decode security rules: %w", err)
	}
	return rules, nil
}

func (s *RedisStore) Update(ctx context.Context, patch Patch) (Rules, error) {
	var updated Rules
	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		updated = patch.Apply(current)
		raw, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("encode security rules: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rulesKey, raw, 0)
			return nil
		})
		return err
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, rulesKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Rules{}, fmt.Errorf("update security rules: %w", err)
		}
		return updated, nil
	}
	return Rules{}, ErrContention
}

package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stocktakehq/stockaudit-backend/pkg/redis"
)

// Manager tracks processed client tokens per consumer using Redis SETNX with a
// TTL. Keys follow the `sa:idempotency:scan:processed:<consumer>:<token>` pattern.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds an idempotency guard that marks tokens as processed for the given TTL.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMarkProcessed returns true if the token has already been processed and
// otherwise marks it as processed with the configured TTL.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer, token string) (bool, error) {
	key, err := m.processedKey(consumer, token)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Delete removes the processed marker so a token can be accepted again.
func (m *Manager) Delete(ctx context.Context, consumer, token string) error {
	key, err := m.processedKey(consumer, token)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer, token string) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if strings.TrimSpace(token) == "" {
		return "", errors.New("token is required")
	}
	scope := fmt.Sprintf("scan:processed:%s", consumer)
	return m.store.IdempotencyKey(scope, token), nil
}

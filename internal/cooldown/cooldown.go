// Package cooldown tracks per-store sync cooldowns in redis. Callers check
// a store before handing it to the syncer; the syncer itself knows nothing
// about cooldowns.
package cooldown

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Tracker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "cooldown"),
	}
}

func key(storeID string) string {
	return "sync:cooldown:" + storeID
}

// OnCooldown reports whether the store was synced within the cooldown
// window. Redis errors fail open: a broken cache should not stop syncs.
func (t *Tracker) OnCooldown(ctx context.Context, storeID string) bool {
	n, err := t.client.Exists(ctx, key(storeID)).Result()
	if err != nil {
		t.logger.Warn("cooldown check failed, allowing sync", "store_id", storeID, "error", err)
		return false
	}
	return n > 0
}

// Mark records a completed sync, starting the cooldown window.
func (t *Tracker) Mark(ctx context.Context, storeID string) error {
	if err := t.client.Set(ctx, key(storeID), time.Now().Format(time.RFC3339), t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown marker: %w", err)
	}
	return nil
}

// Filter drops stores currently on cooldown from ids order-preservingly.
func (t *Tracker) Filter(ctx context.Context, storeIDs []string) []string {
	var due []string
	for _, id := range storeIDs {
		if !t.OnCooldown(ctx, id) {
			due = append(due, id)
		}
	}
	return due
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/text-adventure-client/pkg/protocol"
)

const screenKeyPrefix = "screen:"

// ScreenStore keeps screens in a Cache as JSON under "screen:<id>", each
// expiring after ttl. A screen changed on the server, the start screen
// included, can be served stale until its entry expires.
type ScreenStore struct {
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewScreenStore(c Cache, ttl time.Duration, logger *slog.Logger) *ScreenStore {
	return &ScreenStore{cache: c, ttl: ttl, logger: logger}
}

func screenKey(id string) string {
	return screenKeyPrefix + id
}

// GetScreen returns the stored screen for id. Entries that no longer parse
// are dropped and reported as a miss.
func (s *ScreenStore) GetScreen(ctx context.Context, id string) (protocol.Screen, bool, error) {
	raw, ok, err := s.cache.Get(ctx, screenKey(id))
	if err != nil || !ok {
		return protocol.Screen{}, false, err
	}

	screen, err := protocol.ParseScreen([]byte(raw))
	if err != nil || screen.ID != id {
		s.logger.Warn("Discarding unreadable cached screen", "screen_id", id, "error", err)
		if delErr := s.cache.Del(ctx, screenKey(id)); delErr != nil {
			return protocol.Screen{}, false, delErr
		}
		return protocol.Screen{}, false, nil
	}
	return screen, true, nil
}

func (s *ScreenStore) PutScreen(ctx context.Context, screen protocol.Screen) error {
	data, err := json.Marshal(screen)
	if err != nil {
		return fmt.Errorf("failed to marshal screen: %w", err)
	}
	return s.cache.Set(ctx, screenKey(screen.ID), string(data), s.ttl)
}

// Forget removes the stored copy of a screen.
func (s *ScreenStore) Forget(ctx context.Context, id string) error {
	return s.cache.Del(ctx, screenKey(id))
}

// Package session keeps the mapping from issued login tokens to user ids.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Store is a concurrency-safe map from session id to user id.
type Store interface {
	Put(ctx context.Context, sessionID string, userID uint64, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (uint64, error)
	Remove(ctx context.Context, sessionID string) error
}

package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/communet/internal/domain/entity"
)

// Cache is a key-value store with per-key expiry. Refresh tokens live here.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ok=false when key is missing or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Delete(ctx context.Context, key string) (bool, error)
	// Pop returns the value and removes key in one step.
	Pop(ctx context.Context, key string) (value string, ok bool, err error)
}

// TokenIssuer issues and verifies access tokens.
type TokenIssuer interface {
	Issue(profileID string) (entity.AuthData, error)
	Decode(token string) (profileID string, err error)
}

// EventPublisher delivers domain events after a commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...any) error
}

// AvatarStorage stores uploaded images and returns their public URL.
type AvatarStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ChannelDocument is a channel as stored in the search index.
type ChannelDocument struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

// ChannelIndex is the full-text index over live channels.
type ChannelIndex interface {
	Index(ctx context.Context, doc ChannelDocument) error
	Remove(ctx context.Context, channelID string) error
	Search(ctx context.Context, q string, size int) ([]ChannelDocument, error)
}

// Package tokenstore persists the portal's bearer credential under a single
// fixed key. It never inspects or validates what it stores.
package tokenstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/edulearn/lms/internal/pkg/config"
)

// DefaultKey is the name the credential is stored under.
const DefaultKey = "lms_token"

// Store is durable key/value storage for one opaque credential.
type Store interface {
	Save(ctx context.Context, credential string) error
	// Load reports ok=false when nothing is stored.
	Load(ctx context.Context) (credential string, ok bool, err error)
	Clear(ctx context.Context) error
}

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// New selects a backend from the portal configuration.
func New(cfg *config.PortalConfig) (Store, error) {
	switch cfg.TokenStore {
	case BackendFile, "":
		path := cfg.TokenPath
		if path == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileStore(path), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return NewRedisStore(client, DefaultKey), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("tokenstore: unknown backend %q", cfg.TokenStore)
	}
}

package session

import (
	"fmt"

	"docrepo/internal/config"
	"docrepo/internal/port"
)

// Store is a TokenStore that may hold a connection.
type Store interface {
	port.TokenStore
	Close() error
}

// Open builds the store selected by cfg.Backend.
func Open(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case config.SessionBackendMemory:
		return NewMemoryStore(), nil
	case config.SessionBackendFile, "":
		return NewFileStore(cfg.FilePath), nil
	case config.SessionBackendRedis:
		return NewRedisStore(cfg.RedisURL, cfg.Key)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

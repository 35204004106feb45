package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/GrantAgent/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Store is one logical Redis database. Job state and step memos live in separate databases
// so clearing one never touches the other.
type Store struct {
	client *redis.Client
	db     int
	logger *logger_i.Logger
}

type ConnectionOptions struct {
	Addr        string
	Password    string
	PingTimeout time.Duration
}

// Connect opens database db and pings it. The returned error means Redis is unreachable.
func Connect(ctx context.Context, opts ConnectionOptions, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d: %w", opts.Addr, db, err)
	}

	s := NewStoreFromClient(client)
	s.db = db
	s.logger.Info("Redis store initialised", "addr", opts.Addr, "db", db)
	return s, nil
}

// NewStoreFromClient wraps an existing client, used by tests against miniredis.
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		db:     client.Options().DB,
		logger: logger_i.NewLogger("RedisStore"),
	}
}

func (s *Store) Close() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "db", s.db, "error", err)
		return
	}
	s.logger.Info("Redis store closed", "db", s.db)
}

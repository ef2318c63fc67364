package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes a Redis connection. Fields are populated from the
// environment by pkg/config.
type RedisConfig struct {
	ConnectionURL  string        `env:"URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL is in the format "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	OpTimeout      time.Duration `env:"OP_TIMEOUT" envDefault:"2s"` // OpTimeout bounds every Get/Set/Delete.
}

// ConnectRedis establishes a connection to a Redis server. It pings the
// server up to cfg.RetryAttempts times, waiting cfg.RetryInterval between
// attempts, and gives up once cfg.ConnectTimeout elapses.
//
// Parameters:
//   - ctx: Context for cancelling the connection attempts
//   - cfg: Connection URL, timeouts and retry settings
//
// Returns:
//   - *redis.Client: A connected client, ready to be wrapped by NewRedisStore
//   - error: ErrFailedToParseURL if the connection URL is invalid,
//     ErrRedisNotReady if every attempt fails
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	for i := 0; i < max(cfg.RetryAttempts, 1); i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// RedisStore keeps values under "<namespace>:<key>" in Redis using the
// Encode/Decode byte form.
type RedisStore struct {
	db        redis.UniversalClient
	namespace string
	timeout   time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisTimeout bounds every operation. Zero disables the bound.
func WithRedisTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.timeout = d
	}
}

// NewRedisStore wraps client. namespace isolates the keys of one app.
func NewRedisStore(client redis.UniversalClient, namespace string, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		db:        client,
		namespace: namespace,
		timeout:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value stored under key. A missing key is not an error;
// bytes that do not decode yield ErrCorruptedValue.
func (s *RedisStore) Get(key string) (Value, bool, error) {
	if key == "" {
		return Value{}, false, ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	data, err := s.db.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Value{}, false, nil
	}
	if err != nil {
		return Value{}, false, err
	}

	v, err := Decode(data)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(key string, v Value) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := Encode(v)
	if err != nil {
		return err
	}

	ctx, cancel := s.context()
	defer cancel()

	return s.db.Set(ctx, s.key(key), data, 0).Err()
}

func (s *RedisStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	return s.db.Del(ctx, s.key(key)).Err()
}

// Close terminates the Redis connection.
func (s *RedisStore) Close() error {
	return s.db.Close()
}

func (s *RedisStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}

func (s *RedisStore) context() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

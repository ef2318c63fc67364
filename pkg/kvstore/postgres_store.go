package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultPostgresTable is the table used when none is configured.
const DefaultPostgresTable = "envmanager_kv"

// PostgresConfig describes a PostgreSQL connection. Fields are populated from
// the environment by pkg/config.
type PostgresConfig struct {
	ConnectionString string        `env:"URL"`
	Table            string        `env:"TABLE" envDefault:"envmanager_kv"`
	MaxConns         int32         `env:"MAX_CONNS" envDefault:"4"`
	RetryAttempts    int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"RETRY_INTERVAL" envDefault:"2s"`
	OpTimeout        time.Duration `env:"OP_TIMEOUT" envDefault:"3s"`
}

// PostgresConn is the subset of *pgxpool.Pool used by PostgresStore.
type PostgresConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnectPostgres opens a connection pool and verifies it with a ping.
// Failed attempts back off linearly: attempt n waits n*RetryInterval.
//
// Parameters:
//   - ctx: Context for cancelling the connection attempts
//   - cfg: Connection string, pool size and retry settings
//
// Returns:
//   - *pgxpool.Pool: A verified pool; call EnsureTable on the store built from it
//   - error: ErrFailedToParseURL if the connection string is invalid,
//     ErrPostgresNotReady if every attempt fails
func ConnectPostgres(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	for i := 0; i < max(cfg.RetryAttempts, 1); i++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrPostgresNotReady, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrPostgresNotReady
}

// PostgresStore keeps values as rows of (namespace, key, value) where value
// holds the Encode byte form.
type PostgresStore struct {
	db        PostgresConn
	namespace string
	table     string
	timeout   time.Duration
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithTable overrides DefaultPostgresTable.
func WithTable(table string) PostgresOption {
	return func(s *PostgresStore) {
		if table != "" {
			s.table = table
		}
	}
}

// WithPostgresTimeout bounds every operation. Zero disables the bound.
func WithPostgresTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		s.timeout = d
	}
}

// NewPostgresStore wraps db. namespace isolates the rows of one app.
func NewPostgresStore(db PostgresConn, namespace string, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{
		db:        db,
		namespace: namespace,
		table:     DefaultPostgresTable,
		timeout:   3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureTable creates the key/value table if it does not exist.
func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	namespace TEXT NOT NULL,
	key TEXT NOT NULL,
	value BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`, s.tableIdent())

	if _, err := s.db.Exec(ctx, query); err != nil {
		return errors.Join(ErrFailedToEnsureTable, err)
	}
	return nil
}

func (s *PostgresStore) Get(key string) (Value, bool, error) {
	if key == "" {
		return Value{}, false, ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	query := fmt.Sprintf(`SELECT value FROM %s WHERE namespace = $1 AND key = $2`, s.tableIdent())

	var data []byte
	err := s.db.QueryRow(ctx, query, s.namespace, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
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

// Set upserts the row of key.
func (s *PostgresStore) Set(key string, v Value) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := Encode(v)
	if err != nil {
		return err
	}

	ctx, cancel := s.context()
	defer cancel()

	query := fmt.Sprintf(`INSERT INTO %s (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, s.tableIdent())

	_, err = s.db.Exec(ctx, query, s.namespace, key, data)
	return err
}

func (s *PostgresStore) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	ctx, cancel := s.context()
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE namespace = $1 AND key = $2`, s.tableIdent())
	_, err := s.db.Exec(ctx, query, s.namespace, key)
	return err
}

func (s *PostgresStore) tableIdent() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *PostgresStore) context() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/envmanager/pkg/kvstore"
)

func TestConnectRedis_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := kvstore.ConnectRedis(context.Background(), kvstore.RedisConfig{
		ConnectionURL:  "not-a-redis-url",
		RetryAttempts:  1,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, kvstore.ErrFailedToParseURL)
}

func TestConnectPostgres_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := kvstore.ConnectPostgres(context.Background(), kvstore.PostgresConfig{
		ConnectionString: "postgres://%zz",
		RetryAttempts:    1,
	})
	assert.ErrorIs(t, err, kvstore.ErrFailedToParseURL)
}

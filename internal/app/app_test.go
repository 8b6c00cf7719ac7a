package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvatsbhartiya/storefront/internal/app/config"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/metrics"
)

func TestCartSessions_RecordMetrics(t *testing.T) {
	m := metrics.NewManager("test")
	sessions := newCartSessions(config.CartConfig{SessionIdleTTL: time.Hour}, m, logger.NewNop())

	store := sessions.Get("s1")
	sessions.Get("s2")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartSessions))

	require.NoError(t, store.AddOrUpdate("p1", 1))
	store.Remove("p1")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartMutations))

	sessions.Drop("s2")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartSessions))
}

func TestNew_MongoUnavailable(t *testing.T) {
	cfg := &config.Config{
		Logger:  config.LoggerConfig{Level: "error", Encoding: "json"},
		MongoDB: config.MongoDBConfig{URI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100&connectTimeoutMS=100"},
	}

	application, err := New(cfg)

	require.Error(t, err)
	assert.Nil(t, application)
}

func TestApp_CloseReleasesPartiallyOpenedResources(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	a := &App{log: logger.NewNop(), redisClient: redisClient}

	a.close(context.Background())

	assert.ErrorIs(t, redisClient.Ping(context.Background()).Err(), redis.ErrClosed)
}

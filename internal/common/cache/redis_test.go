package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis 创建 miniredis 测试实例
func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// setupTestRedis 初始化测试 Redis 客户端
func setupTestRedis(t *testing.T, s *miniredis.Miniredis) *redis.Client {
	rdb = redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		rdb = nil
	})
	return rdb
}

func TestInit_Success(t *testing.T) {
	s := setupMiniRedis(t)

	client, err := Init(&config.RedisConfig{
		Host:        s.Host(),
		Port:        s.Server().Addr().Port,
		PoolSize:    5,
		DialTimeout: 1,
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Same(t, client, GetClient())
	t.Cleanup(func() { _ = Close() })
}

func TestInit_Unreachable(t *testing.T) {
	_, err := Init(&config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 1})
	assert.Error(t, err)
}

func TestSetGet_JSON(t *testing.T) {
	s := setupMiniRedis(t)
	setupTestRedis(t, s)
	ctx := context.Background()

	type quote struct {
		RoomID int64  `json:"room_id"`
		Total  string `json:"total"`
	}

	require.NoError(t, Set(ctx, "quote:1", quote{RoomID: 1, Total: "313.32"}, time.Minute))

	var got quote
	require.NoError(t, Get(ctx, "quote:1", &got))
	assert.Equal(t, "313.32", got.Total)

	require.NoError(t, Delete(ctx, "quote:1"))
	assert.ErrorIs(t, Get(ctx, "quote:1", &got), redis.Nil)
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "lock:room:12", BuildKey(KeyPrefixLock, "room", "12"))
	assert.Equal(t, "lock:room:12", RoomLockKey(12))
}

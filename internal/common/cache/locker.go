package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired 锁已被其他请求持有
var ErrLockNotAcquired = errors.New("cache: lock not acquired")

// 仅删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RoomLocker 按房间维度的分布式锁
// 数据库行锁才是最终保障，这里用来在进入事务前快速拒绝并发请求
type RoomLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomLocker 创建房间锁，client 为空时所有操作直接放行
func NewRoomLocker(client *redis.Client, ttl time.Duration) *RoomLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RoomLocker{client: client, ttl: ttl}
}

// RoomLockKey 房间锁键
func RoomLockKey(roomID int64) string {
	return BuildKey(KeyPrefixLock, "room", strconv.FormatInt(roomID, 10))
}

// Lock 获取房间锁，返回释放函数
func (l *RoomLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}

	key := RoomLockKey(roomID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire room lock: %w", err)
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}

	return func() {
		// 使用独立 context，请求已取消时仍能释放
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = unlockScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}, nil
}

// Package session 在 Redis 中为每个用户维护一个会话版本号。
// 令牌中携带签发时的版本号，版本号递增后该用户此前签发的所有令牌失效。
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewStore(rdb *redis.Client, timeout time.Duration) *Store {
	return &Store{rdb: rdb, timeout: timeout}
}

func key(userID int64) string {
	return fmt.Sprintf("session_version_%d", userID)
}

// Version 在键不存在时返回 0
func (s *Store) Version(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	v, err := s.rdb.Get(ctx, key(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func (s *Store) Revoke(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.rdb.Incr(ctx, key(userID)).Err()
}

// Nop 用于未配置 Redis 的环境，令牌在过期前始终有效
type Nop struct{}

func (Nop) Version(ctx context.Context, userID int64) (int64, error) { return 0, nil }

func (Nop) Revoke(ctx context.Context, userID int64) error { return nil }

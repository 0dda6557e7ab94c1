package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gomodule/redigo/redis"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis so several API instances can share them.
type RedisStore struct {
	pool *redis.Pool
}

// NewRedisPool creates a connection pool for addr.
func NewRedisPool(addr string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

func NewRedisStore(pool *redis.Pool) *RedisStore {
	return &RedisStore{pool: pool}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, userID uint64, ttl time.Duration) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	if _, err := conn.Do("SETEX", redisKeyPrefix+sessionID, seconds, strconv.FormatUint(userID, 10)); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (uint64, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	userID, err := redis.Uint64(conn.Do("GET", redisKeyPrefix+sessionID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("failed to load session: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) Remove(ctx context.Context, sessionID string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("DEL", redisKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

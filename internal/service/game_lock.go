package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// GameLocker serializes finalization work per game. TryAcquire never blocks
// waiting for a holder: it returns domain.ErrFinalizationInFlight instead.
type GameLocker interface {
	TryAcquire(ctx context.Context, gameID uuid.UUID) (release func(), err error)
}

// MemoryLocker guards games within a single process.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[uuid.UUID]struct{})}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, gameID uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[gameID]; ok {
		return nil, domain.ErrFinalizationInFlight
	}
	l.held[gameID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, gameID)
			l.mu.Unlock()
		})
	}, nil
}

const lockKeyPrefix = "finalize:lock:"

// Deletes the key only while it still holds our token, so an expired lock
// taken over by another instance is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker guards games across every instance sharing one redis.
type RedisLocker struct {
	rdb *goredis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewRedisLocker(rdb *goredis.Client, ttl time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "redis_locker").Logger(),
	}
}

// NewRedisClient connects and pings so a bad address fails at startup.
func NewRedisClient(addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (l *RedisLocker) TryAcquire(ctx context.Context, gameID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + gameID.String()
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire finalization lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrFinalizationInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled by the time we release.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
				l.log.Warn().Err(err).Str("game_id", gameID.String()).Msg("failed to release finalization lock")
			}
		})
	}, nil
}

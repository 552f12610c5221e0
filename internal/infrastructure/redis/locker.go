package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/BancoSangre-api/internal/application/bloodbank"
)

var _ bloodbank.SweepLocker = (*Locker)(nil)

// Locker lock distribuido con SET NX + TTL. Tras un barrido exitoso el lock no se libera:
// expira solo, así una réplica que arranca más tarde el mismo día no lo repite.
type Locker struct {
	rdb redis.UniversalClient
}

// NewLocker construye el locker sobre un cliente go-redis.
func NewLocker(rdb redis.UniversalClient) *Locker {
	return &Locker{rdb: rdb}
}

// TryLock true si esta llamada tomó el lock.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// Unlock borra la clave.
func (l *Locker) Unlock(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

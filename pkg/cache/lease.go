package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLeaseHeld is returned when another holder owns the lease.
	ErrLeaseHeld = errors.New("lease held by another owner")
	// ErrLeaseLost is returned by Refresh once the lease expired or changed owner.
	ErrLeaseLost = errors.New("lease no longer owned")
)

// releaseScript deletes the key only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// refreshScript extends the TTL only when the caller still owns the key.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// Lease is a best-effort distributed mutex backed by SET NX PX.
type Lease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewLease builds a lease for key. A nil client yields a lease that always succeeds.
func NewLease(client *redis.Client, key string, ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Lease{client: client, key: key, ttl: ttl}
}

// Distributed reports whether the lease is backed by Redis.
func (l *Lease) Distributed() bool {
	return l != nil && l.client != nil
}

// TTL is the expiry applied on Acquire and on every Refresh.
func (l *Lease) TTL() time.Duration {
	if l == nil {
		return 0
	}
	return l.ttl
}

// Acquire takes the lease and returns the owner token needed for Release.
func (l *Lease) Acquire(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if l == nil || l.client == nil {
		return token, nil
	}
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx %s: %w", l.key, err)
	}
	if !ok {
		return "", ErrLeaseHeld
	}
	return token, nil
}

// Release gives the lease back if token still owns it.
func (l *Lease) Release(ctx context.Context, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis release %s: %w", l.key, err)
	}
	return nil
}

// Refresh pushes the expiry back to a full TTL while token still owns the lease.
func (l *Lease) Refresh(ctx context.Context, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis refresh %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

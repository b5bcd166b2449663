package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLeaseHeld is returned when the lease stays owned by someone else until ctx ends.
	ErrLeaseHeld = errors.New("lease held by another owner")
	// ErrLeaseLost is returned when refreshing a lease that expired or changed owner.
	ErrLeaseLost = errors.New("lease lost")
)

const acquireInterval = 100 * time.Millisecond

var (
	refreshScript = backend.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
	releaseScript = backend.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
)

// Lease is an expiring single-owner claim on a key.
type Lease struct {
	client *backend.Client
	key    string
	token  string
	ttl    time.Duration
}

// AcquireLease claims key with SET NX PX, polling until it succeeds or ctx ends.
func AcquireLease(ctx context.Context, client *backend.Client, key string, ttl time.Duration) (*Lease, error) {
	l := &Lease{client: client, key: key, token: uuid.NewString(), ttl: ttl}

	ticker := time.NewTicker(acquireInterval)
	defer ticker.Stop()

	for {
		ok, err := client.SetNX(ctx, key, l.token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLeaseHeld, key)
			}
			return nil, fmt.Errorf("redis error acquiring lease: %w", err)
		}
		if ok {
			return l, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLeaseHeld, key)
		case <-ticker.C:
		}
	}
}

// Key returns the leased key.
func (l *Lease) Key() string { return l.key }

// Refresh extends the lease by its TTL. It fails with ErrLeaseLost when the key
// expired or was taken over.
func (l *Lease) Refresh(ctx context.Context) error {
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error refreshing lease: %w", err)
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

// Release deletes the key if the lease still owns it.
func (l *Lease) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

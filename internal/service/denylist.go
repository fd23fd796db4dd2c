package service

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Denylist stores revoked refresh-token identifiers until they would have
// expired anyway. Entries only ever move one way: active -> denied.
type Denylist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist keeps revoked JTIs in redis keyed denylist:<jti>, each with
// a TTL covering the token's remaining lifetime so the set cleans itself up.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist connects to redis and verifies it with a short ping.
func NewRedisDenylist(addr, password string, db int) (*RedisDenylist, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisDenylist{client: client}, nil
}

func (d *RedisDenylist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired, nothing to deny
		return nil
	}
	return d.client.Set(ctx, "denylist:"+jti, "1", ttl).Err()
}

func (d *RedisDenylist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, "denylist:"+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is the fallback used when redis is not configured, and in
// tests. Suitable for a single process only.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	d.entries[jti] = time.Now().Add(ttl)
	d.mu.Unlock()
	return nil
}

func (d *MemoryDenylist) Contains(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	deadline, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}

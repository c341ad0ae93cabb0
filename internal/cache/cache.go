// Package cache puts a Redis read-through cache in front of a user directory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/registry"
)

const (
	userKeyPrefix = "notify:user:"
	staffKey      = "notify:staff"
)

// NewClient returns a Redis client for addr.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Directory caches GetUser and ListStaffAndAdmins results. Redis errors are
// logged and the backing directory answers instead.
type Directory struct {
	next   registry.UserDirectory
	client *redis.Client
	ttl    time.Duration
}

var _ registry.UserDirectory = (*Directory)(nil)

// NewDirectory wraps next. Unknown users are never cached.
func NewDirectory(next registry.UserDirectory, client *redis.Client, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Directory{next: next, client: client, ttl: ttl}
}

func (d *Directory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	key := userKeyPrefix + id
	var u domain.User
	if d.get(ctx, key, &u) {
		return &u, nil
	}
	got, err := d.next.GetUser(ctx, id)
	if err != nil || got == nil {
		return got, err
	}
	d.set(ctx, key, got)
	return got, nil
}

func (d *Directory) ListStaffAndAdmins(ctx context.Context) ([]domain.User, error) {
	var staff []domain.User
	if d.get(ctx, staffKey, &staff) {
		return staff, nil
	}
	staff, err := d.next.ListStaffAndAdmins(ctx)
	if err != nil {
		return nil, err
	}
	d.set(ctx, staffKey, staff)
	return staff, nil
}

// Invalidate drops the cached user and the staff list, which may contain it.
func (d *Directory) Invalidate(ctx context.Context, id string) error {
	return d.client.Del(ctx, userKeyPrefix+id, staffKey).Err()
}

func (d *Directory) get(ctx context.Context, key string, dst any) bool {
	b, err := d.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Get().Warn().Err(err).Str("key", key).Msg("directory cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		logging.Get().Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		return false
	}
	return true
}

func (d *Directory) set(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := d.client.Set(ctx, key, b, d.ttl).Err(); err != nil {
		logging.Get().Warn().Err(err).Str("key", key).Msg("directory cache write failed")
	}
}

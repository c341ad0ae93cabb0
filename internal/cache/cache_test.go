package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

type countingDirectory struct {
	users     map[string]domain.User
	gets      int
	listCalls int
}

func (c *countingDirectory) GetUser(_ context.Context, id string) (*domain.User, error) {
	c.gets++
	u, ok := c.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (c *countingDirectory) ListStaffAndAdmins(context.Context) ([]domain.User, error) {
	c.listCalls++
	var out []domain.User
	for _, u := range c.users {
		if u.IsStaff() {
			out = append(out, u)
		}
	}
	return out, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingDirectory, *Directory) {
	t.Helper()
	mr := miniredis.RunT(t)
	backing := &countingDirectory{users: map[string]domain.User{
		"cust-1":  {ID: "cust-1", FirstName: "Ana", Role: domain.RoleCustomer, PreferredLanguage: "es"},
		"staff-1": {ID: "staff-1", Role: domain.RoleStaff},
	}}
	client := NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return mr, backing, NewDirectory(backing, client, time.Minute)
}

func TestGetUserReadThrough(t *testing.T) {
	mr, backing, d := setup(t)
	ctx := context.Background()

	u, err := d.GetUser(ctx, "cust-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	u, err = d.GetUser(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "es", u.PreferredLanguage)
	assert.Equal(t, 1, backing.gets)
	assert.True(t, mr.Exists(userKeyPrefix+"cust-1"))

	mr.FastForward(2 * time.Minute)
	_, err = d.GetUser(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.gets, "expired entries are reloaded")
}

func TestUnknownUserNotCached(t *testing.T) {
	mr, backing, d := setup(t)
	u, err := d.GetUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.False(t, mr.Exists(userKeyPrefix+"ghost"))
	_, _ = d.GetUser(context.Background(), "ghost")
	assert.Equal(t, 2, backing.gets)
}

func TestStaffListCachedAndInvalidated(t *testing.T) {
	_, backing, d := setup(t)
	ctx := context.Background()

	staff, err := d.ListStaffAndAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	_, _ = d.ListStaffAndAdmins(ctx)
	assert.Equal(t, 1, backing.listCalls)

	backing.users["staff-2"] = domain.User{ID: "staff-2", Role: domain.RoleAdmin}
	require.NoError(t, d.Invalidate(ctx, "staff-2"))
	staff, err = d.ListStaffAndAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, staff, 2)
	assert.Equal(t, 2, backing.listCalls)
}

func TestRedisDownFallsThrough(t *testing.T) {
	mr, backing, d := setup(t)
	mr.Close()

	u, err := d.GetUser(context.Background(), "cust-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ana", u.FirstName)
	assert.Equal(t, 1, backing.gets)
}

func TestCorruptEntryIsIgnored(t *testing.T) {
	mr, backing, d := setup(t)
	require.NoError(t, mr.Set(userKeyPrefix+"cust-1", "{not json"))

	u, err := d.GetUser(context.Background(), "cust-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, 1, backing.gets)
}

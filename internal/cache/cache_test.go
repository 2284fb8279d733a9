package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func newStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb)
}

func TestStore_JSONRoundTrip(t *testing.T) {
	mr, s := newStore(t)
	ctx := context.Background()

	found, err := s.GetJSON(ctx, "k", &item{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetJSON(ctx, "k", item{Name: "a"}, time.Minute))
	var got item
	found, err = s.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	s.Invalidate(ctx, "k")
	assert.False(t, mr.Exists("k"))
}

func TestAside(t *testing.T) {
	_, s := newStore(t)
	ctx := context.Background()
	calls := 0
	fetch := func() (item, error) {
		calls++
		return item{Name: "fresh"}, nil
	}

	first, err := Aside(ctx, s, "test", "aside", time.Minute, fetch)
	require.NoError(t, err)
	second, err := Aside(ctx, s, "test", "aside", time.Minute, fetch)
	require.NoError(t, err)

	assert.Equal(t, "fresh", first.Name)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr, s := newStore(t)
	_, err := Aside(context.Background(), s, "test", "broken", time.Minute, func() (item, error) {
		return item{}, errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("broken"))
}

func TestStore_NilClientIsNoop(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	assert.False(t, s.Enabled())
	require.NoError(t, s.SetJSON(ctx, "k", item{}, time.Minute))
	require.NoError(t, s.SetFlag(ctx, "k", time.Minute))
	found, err := s.GetJSON(ctx, "k", &item{})
	require.NoError(t, err)
	assert.False(t, found)
	ok, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	s.Invalidate(ctx, "k")

	calls := 0
	_, err = Aside(ctx, s, "test", "k", time.Minute, func() (item, error) {
		calls++
		return item{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStore_Flag(t *testing.T) {
	mr, s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFlag(ctx, BlacklistKey("abc"), time.Hour))
	ok, err := s.Exists(ctx, BlacklistKey("abc"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("blacklist:abc"))
}

func TestNewClient_URL(t *testing.T) {
	rdb, err := NewClient("redis://localhost:6379/2")
	require.NoError(t, err)
	defer rdb.Close()
	assert.Equal(t, 2, rdb.Options().DB)

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
}

func TestInitRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, InitRedis(addr))
	assert.Nil(t, GetClient())
}

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// openAt returns a store whose clock is controlled by the returned pointer.
func openAt(t *testing.T, ttl time.Duration) (*Store, *time.Time) {
	t.Helper()
	s, err := Open(t.TempDir(), ttl)
	require.NoError(t, err)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_PutGet(t *testing.T) {
	s, _ := openAt(t, time.Hour)
	key := Key([]byte("trace"))

	var got payload
	require.ErrorIs(t, s.Get(key, &got), ErrNotFound)

	require.NoError(t, s.Put(key, payload{Name: "a", Count: 3}))
	require.NoError(t, s.Get(key, &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)

	require.NoError(t, s.Put(key, payload{Name: "b"}))
	require.NoError(t, s.Get(key, &got))
	assert.Equal(t, "b", got.Name)

	require.NoError(t, s.Delete(key))
	require.NoError(t, s.Delete(key))
	require.ErrorIs(t, s.Get(key, &got), ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	s, now := openAt(t, time.Hour)
	require.NoError(t, s.Put("k", payload{Name: "x"}))

	*now = now.Add(59 * time.Minute)
	var got payload
	require.NoError(t, s.Get("k", &got))

	*now = now.Add(time.Minute)
	require.ErrorIs(t, s.Get("k", &got), ErrExpired)

	_, err := os.Stat(filepath.Join(s.Dir(), "k.json"))
	assert.True(t, os.IsNotExist(err), "expired entry is removed on read")
}

func TestStore_PruneAndClear(t *testing.T) {
	s, now := openAt(t, time.Hour)
	require.NoError(t, s.Put("old", payload{}))
	*now = now.Add(30 * time.Minute)
	require.NoError(t, s.Put("new", payload{}))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "junk.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("keep"), 0o600))

	count, size, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Positive(t, size)

	*now = now.Add(45 * time.Minute)
	removed, err := s.Prune()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var got payload
	require.NoError(t, s.Get("new", &got))

	removed, err = s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, _, err = s.Stats()
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.FileExists(t, filepath.Join(s.Dir(), "notes.txt"))
}

func TestStore_InvalidKeys(t *testing.T) {
	s, _ := openAt(t, time.Hour)

	for _, key := range []string{"", "a/b", `a\b`, "c:d", ".hidden"} {
		t.Run(key, func(t *testing.T) {
			require.ErrorIs(t, s.Put(key, payload{}), ErrInvalidKey)
			require.ErrorIs(t, s.Get(key, &payload{}), ErrInvalidKey)
			require.ErrorIs(t, s.Delete(key), ErrInvalidKey)
		})
	}
}

func TestStore_Disabled(t *testing.T) {
	var s *Store
	assert.False(t, s.Enabled())
	require.ErrorIs(t, s.Get("k", &payload{}), ErrDisabled)
	require.ErrorIs(t, s.Put("k", payload{}), ErrDisabled)

	_, err := s.Prune()
	require.ErrorIs(t, err, ErrDisabled)

	zero := &Store{}
	_, _, err = zero.Stats()
	require.ErrorIs(t, err, ErrDisabled)
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("", time.Hour)
	require.Error(t, err)

	_, err = Open(t.TempDir(), time.Second)
	require.ErrorIs(t, err, ErrInvalidTTL)

	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s, err := Open(dir, DefaultTTL)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, DefaultTTL, s.TTL())
}

func TestKey(t *testing.T) {
	a := Key([]byte("ab"), []byte("c"))
	b := Key([]byte("a"), []byte("bc"))

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key([]byte("ab"), []byte("c")))
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "3600", want: time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "1h30m", want: 90 * time.Minute},
		{in: "720h", want: MaxTTL},
		{in: "59", wantErr: true},
		{in: "721h", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTTL(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 30 * time.Second, want: "30s"},
		{in: 5 * time.Minute, want: "5m"},
		{in: 2 * time.Hour, want: "2h"},
		{in: 90 * time.Minute, want: "1h30m"},
		{in: 7 * 24 * time.Hour, want: "7d"},
		{in: 50 * time.Hour, want: "2d2h"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTTL(tt.in))
		})
	}
}

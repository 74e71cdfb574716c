package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	data   map[string]string
	ttls   map[string]time.Duration
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memStore) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.setErr != nil {
		return redis.NewStatusResult("", m.setErr)
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRunCache_RoundTrip(t *testing.T) {
	store := newMemStore()
	c := NewRunCache(store, 10*time.Minute)

	entry := Entry{
		Run: model.Run{ID: "run-1", FileName: "manifest.xlsx", CleanPath: model.CleanPathAI},
		Summary: model.Summary{
			TotalRows:           2,
			MissingPhoneNumbers: []string{"Ayse Yilmaz"},
			DuplicatePhoneNumbers: map[string]model.DuplicateGroup{
				"+905441234567": {Phone: "+905441234567", FirstName: "Can Ozturk", Duplicates: []string{"Can O"}},
			},
		},
		VCard: "BEGIN:VCARD\n",
	}
	require.NoError(t, c.Put(context.Background(), entry))
	assert.Equal(t, 10*time.Minute, store.ttls["contactgw:run:run-1"])

	got, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, entry.Run.ID, got.Run.ID)
	assert.Equal(t, model.CleanPathAI, got.Run.CleanPath)
	assert.Equal(t, entry.Summary.DuplicatePhoneNumbers, got.Summary.DuplicatePhoneNumbers)
	assert.Equal(t, []string{"Ayse Yilmaz"}, got.Summary.MissingPhoneNumbers)
	assert.Equal(t, "BEGIN:VCARD\n", got.VCard)
}

func TestRunCache_NotFound(t *testing.T) {
	c := NewRunCache(newMemStore(), 0)
	assert.Equal(t, DefaultTTL, c.ttl)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunCache_PutErrors(t *testing.T) {
	store := newMemStore()
	c := NewRunCache(store, time.Minute)

	assert.Error(t, c.Put(context.Background(), Entry{}))

	store.setErr = errors.New("connection refused")
	err := c.Put(context.Background(), Entry{Run: model.Run{ID: "x"}})
	assert.ErrorIs(t, err, store.setErr)
}

func TestRunCache_CorruptEntry(t *testing.T) {
	store := newMemStore()
	store.data["contactgw:run:bad"] = "{not json"

	_, err := NewRunCache(store, time.Minute).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

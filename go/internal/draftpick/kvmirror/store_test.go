package kvmirror

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

type fakeEntry struct {
	jetstream.KeyValueEntry
	value []byte
}

func (e fakeEntry) Value() []byte { return e.value }

type fakeLister struct {
	jetstream.KeyLister
	keys chan string
}

func (l fakeLister) Keys() <-chan string { return l.keys }
func (l fakeLister) Stop() error         { return nil }

// fakeBucket mimics JetStream KV semantics: deletes of absent keys succeed.
type fakeBucket struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{data: map[string][]byte{}}
}

func (b *fakeBucket) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet != nil {
		return nil, b.failGet
	}
	v, ok := b.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return fakeEntry{value: v}, nil
}

func (b *fakeBucket) Put(_ context.Context, key string, value []byte) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	return uint64(len(b.data)), nil
}

func (b *fakeBucket) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func (b *fakeBucket) ListKeys(_ context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	keys := make(chan string, len(b.data))
	for k := range b.data {
		keys <- k
	}
	close(keys)
	return fakeLister{keys: keys}, nil
}

func pick(id int64, player string) models.DraftPick {
	return models.DraftPick{ID: id, PickNumber: "(1)", ProTeam: "Boston Celtics", PlayerName: player}
}

func TestPutAndGet(t *testing.T) {
	bucket := newFakeBucket()
	store := NewStore(bucket)
	ctx := context.Background()

	require.NoError(t, store.PutDraftPick(ctx, pick(3, "John Doe")))
	assert.Contains(t, bucket.data, "3")

	got, err := store.GetDraftPick(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, pick(3, "John Doe"), *got)

	_, err = store.GetDraftPick(ctx, 4)
	require.ErrorIs(t, err, mirror.ErrNotFound)
}

func TestGetSurfacesStoreErrors(t *testing.T) {
	bucket := newFakeBucket()
	bucket.failGet = errors.New("nats: timeout")
	store := NewStore(bucket)

	_, err := store.GetDraftPick(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, mirror.ErrNotFound)
}

func TestDeleteReportsMissingKeys(t *testing.T) {
	store := NewStore(newFakeBucket())
	ctx := context.Background()

	require.ErrorIs(t, store.DeleteDraftPick(ctx, 9), mirror.ErrNotFound)

	require.NoError(t, store.PutDraftPick(ctx, pick(9, "John Doe")))
	require.NoError(t, store.DeleteDraftPick(ctx, 9))
	_, err := store.GetDraftPick(ctx, 9)
	require.ErrorIs(t, err, mirror.ErrNotFound)
}

func TestScanDraftPicks(t *testing.T) {
	store := NewStore(newFakeBucket())
	ctx := context.Background()

	picks, err := store.ScanDraftPicks(ctx)
	require.NoError(t, err)
	assert.Empty(t, picks)

	require.NoError(t, store.PutDraftPick(ctx, pick(10, "B")))
	require.NoError(t, store.PutDraftPick(ctx, pick(2, "A")))

	picks, err = store.ScanDraftPicks(ctx)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.Equal(t, int64(2), picks[0].ID)
	assert.Equal(t, int64(10), picks[1].ID)
}

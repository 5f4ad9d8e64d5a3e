package objmirror

import (
	"context"
	"sync"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted map[string]bool
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, deleted: map[string]bool{}}
}

func (b *fakeBucket) PutBytes(_ context.Context, name string, data []byte) (*jetstream.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = data
	delete(b.deleted, name)
	return &jetstream.ObjectInfo{ObjectMeta: jetstream.ObjectMeta{Name: name}}, nil
}

func (b *fakeBucket) GetBytes(_ context.Context, name string, _ ...jetstream.GetObjectOpt) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[name]
	if !ok {
		return nil, jetstream.ErrObjectNotFound
	}
	return data, nil
}

func (b *fakeBucket) Delete(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[name]; !ok {
		return jetstream.ErrObjectNotFound
	}
	delete(b.objects, name)
	b.deleted[name] = true
	return nil
}

func (b *fakeBucket) List(_ context.Context, _ ...jetstream.ListObjectsOpt) ([]*jetstream.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var infos []*jetstream.ObjectInfo
	for name := range b.objects {
		infos = append(infos, &jetstream.ObjectInfo{ObjectMeta: jetstream.ObjectMeta{Name: name}})
	}
	for name := range b.deleted {
		infos = append(infos, &jetstream.ObjectInfo{ObjectMeta: jetstream.ObjectMeta{Name: name}, Deleted: true})
	}
	if len(infos) == 0 {
		return nil, jetstream.ErrNoObjectsFound
	}
	return infos, nil
}

func TestDocumentRoundTripByKey(t *testing.T) {
	bucket := newFakeBucket()
	store := NewStore(bucket)
	ctx := context.Background()

	pick := models.DraftPick{ID: 5, PickNumber: "(77)", ProTeam: "Boston Celtics", PlayerName: "John Doe", AmateurTeam: "Duke"}
	require.NoError(t, store.PutDocument(ctx, mirror.ObjectKey(5), pick))
	assert.JSONEq(t,
		`{"id":5,"pick_number":"(77)","pro_team":"Boston Celtics","player_name":"John Doe","amateur_team":"Duke"}`,
		string(bucket.objects["draft_5.json"]))

	got, err := store.GetDocument(ctx, "draft_5.json")
	require.NoError(t, err)
	assert.Equal(t, pick, *got)

	_, err = store.GetDocument(ctx, "draft_6.json")
	require.ErrorIs(t, err, mirror.ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	store := NewStore(newFakeBucket())
	ctx := context.Background()

	require.ErrorIs(t, store.DeleteDocument(ctx, "draft_1.json"), mirror.ErrNotFound)

	require.NoError(t, store.PutDocument(ctx, "draft_1.json", models.DraftPick{ID: 1}))
	require.NoError(t, store.DeleteDocument(ctx, "draft_1.json"))
	_, err := store.GetDocument(ctx, "draft_1.json")
	require.ErrorIs(t, err, mirror.ErrNotFound)
}

func TestListKeysSkipsDeleted(t *testing.T) {
	store := NewStore(newFakeBucket())
	ctx := context.Background()

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, store.PutDocument(ctx, "draft_2.json", models.DraftPick{ID: 2}))
	require.NoError(t, store.PutDocument(ctx, "draft_1.json", models.DraftPick{ID: 1}))
	require.NoError(t, store.PutDocument(ctx, "draft_3.json", models.DraftPick{ID: 3}))
	require.NoError(t, store.DeleteDocument(ctx, "draft_3.json"))

	keys, err = store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft_1.json", "draft_2.json"}, keys)
}

package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var fixedNow = time.Unix(1700000000, 0).UTC()

func fixedClock() time.Time { return fixedNow }

// sequence returns a suffix generator replaying values, then "s<n>".
func sequence(values ...string) func() string {
	i := 0
	return func() string {
		defer func() { i++ }()
		if i < len(values) {
			return values[i]
		}
		return fmt.Sprintf("s%d", i)
	}
}

// failingStorage fails every call.
type failingStorage struct{}

func (failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk unplugged")
}
func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk unplugged")
}
func (failingStorage) Update(context.Context, string, func([]byte) ([]byte, error)) error {
	return errors.New("disk unplugged")
}

// readOnlyStorage reads fine and fails every write.
type readOnlyStorage struct{ *MemoryStorage }

func (readOnlyStorage) Set(context.Context, string, []byte) error { return errors.New("read-only") }
func (readOnlyStorage) Update(context.Context, string, func([]byte) ([]byte, error)) error {
	return errors.New("read-only")
}

func soap() map[string]any {
	return map[string]any{
		"items": []any{map[string]any{"id": "p1", "name": "Soap", "price": 5, "quantity": 2, "barcode": "123"}},
		"total": 10,
	}
}

func TestSaveSaleLocally_StampsAndAppends(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(NewMemoryStorage(), WithClock(fixedClock), WithSuffix(sequence("aaa", "bbb")))

	assert.Equal(t, 0, b.QueueCount(ctx))
	require.True(t, b.SaveSaleLocally(ctx, soap()))
	require.True(t, b.SaveSaleLocally(ctx, map[string]any{"total": 3}))
	assert.Equal(t, 2, b.QueueCount(ctx))

	pending, err := b.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "1700000000000-aaa", pending[0].OfflineID)
	assert.Equal(t, "1700000000000-bbb", pending[1].OfflineID)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", pending[0].CreatedAt)
	assert.False(t, pending[0].Synced)
	assert.JSONEq(t, `10`, string(pending[0].Fields["total"]))
	assert.JSONEq(t, `3`, string(pending[1].Fields["total"]))
}

func TestSave_OverwritesCallerStamps(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(NewMemoryStorage(), WithClock(fixedClock), WithSuffix(sequence("zzz")))

	p, err := b.Save(ctx, map[string]any{"offlineId": "mine", "synced": true, "createdAt": "yesterday", "total": 1})
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-zzz", p.OfflineID)
	assert.False(t, p.Synced)
	assert.NotContains(t, p.Fields, "offlineId")

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"offlineId":"1700000000000-zzz","createdAt":"2023-11-14T22:13:20.000Z","synced":false,"total":1}`, string(raw))
}

func TestSaveSaleLocally_RejectsNonObjects(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(NewMemoryStorage())

	assert.False(t, b.SaveSaleLocally(ctx, 42))
	assert.False(t, b.SaveSaleLocally(ctx, nil))
	assert.False(t, b.SaveSaleLocally(ctx, []int{1, 2}))
	assert.False(t, b.SaveSaleLocally(ctx, map[string]any{"ch": make(chan int)}))
	assert.Equal(t, 0, b.QueueCount(ctx))
}

func TestSaveSaleLocally_StorageFailureReturnsFalse(t *testing.T) {
	ctx := context.Background()

	b := NewBuffer(failingStorage{})
	assert.NotPanics(t, func() { assert.False(t, b.SaveSaleLocally(ctx, soap())) })
	assert.Equal(t, 0, b.QueueCount(ctx))

	ro := NewBuffer(readOnlyStorage{NewMemoryStorage()})
	assert.False(t, ro.SaveSaleLocally(ctx, soap()))
	assert.Equal(t, 0, ro.QueueCount(ctx))
}

func TestQueueCount_CorruptBlobReadsAsZero(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.Set(ctx, QueueKey, []byte(`{not a queue`)))
	b := NewBuffer(store)

	assert.Equal(t, 0, b.QueueCount(ctx))
	assert.False(t, b.SaveSaleLocally(ctx, soap()))
	_, err := b.Pending(ctx)
	assert.Error(t, err)
}

func TestQueue_SkipsUnreadableEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	blob := `[null,{"offlineId":"1-a","createdAt":"2023-11-14T22:13:20.000Z","synced":false,"total":1},5,` +
		`{"offlineId":7},{"offlineId":"1-b","createdAt":"2023-11-14T22:13:20.000Z","synced":false,"total":2}]`
	require.NoError(t, store.Set(ctx, QueueKey, []byte(blob)))
	b := NewBuffer(store, WithClock(fixedClock), WithSuffix(sequence("c")))

	assert.Equal(t, 2, b.QueueCount(ctx))
	pending, err := b.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "1-a", pending[0].OfflineID)
	assert.Equal(t, "1-b", pending[1].OfflineID)

	// The next write drops the unreadable entries from storage.
	require.NoError(t, b.Remove(ctx, "1-a"))
	raw, err := store.Get(ctx, QueueKey)
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "1-b", stored[0]["offlineId"])
}

func TestRemove_OnlyMatchingID(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(NewMemoryStorage(), WithClock(fixedClock), WithSuffix(sequence("a", "b", "c")))
	for i := 0; i < 3; i++ {
		require.True(t, b.SaveSaleLocally(ctx, map[string]any{"n": i}))
	}

	require.NoError(t, b.Remove(ctx, "1700000000000-b"))
	require.NoError(t, b.Remove(ctx, "does-not-exist"))

	pending, err := b.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "1700000000000-a", pending[0].OfflineID)
	assert.Equal(t, "1700000000000-c", pending[1].OfflineID)
}

func TestSave_RegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(NewMemoryStorage(), WithClock(fixedClock), WithSuffix(sequence("same", "same", "same", "other")))

	first, err := b.Save(ctx, soap())
	require.NoError(t, err)
	second, err := b.Save(ctx, soap())
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-same", first.OfflineID)
	assert.Equal(t, "1700000000000-other", second.OfflineID)
}

func TestSave_UniqueIDsWithinOneMillisecond(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		n := rapid.IntRange(1, 40).Draw(rt, "n")
		suffixes := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c", "d"}), 0, 80).Draw(rt, "suffixes")
		b := NewBuffer(NewMemoryStorage(), WithClock(fixedClock), WithSuffix(sequence(suffixes...)))

		for i := 0; i < n; i++ {
			if !b.SaveSaleLocally(ctx, map[string]any{"i": i}) {
				rt.Fatalf("save %d failed", i)
			}
		}
		pending, err := b.Pending(ctx)
		if err != nil {
			rt.Fatal(err)
		}
		seen := make(map[string]bool, len(pending))
		for _, p := range pending {
			if seen[p.OfflineID] {
				rt.Fatalf("duplicate offlineId %s", p.OfflineID)
			}
			seen[p.OfflineID] = true
		}
		if len(pending) != n {
			rt.Fatalf("queue has %d sales, want %d", len(pending), n)
		}
	})
}

func TestConcurrentSavesAndRemovesLoseNothing(t *testing.T) {
	ctx := context.Background()
	b := NewBuffer(NewMemoryStorage())
	for i := 0; i < 20; i++ {
		require.True(t, b.SaveSaleLocally(ctx, map[string]any{"seed": i}))
	}
	seeded, err := b.Pending(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 30; i++ {
			b.SaveSaleLocally(ctx, map[string]any{"new": i})
		}
	}()
	go func() {
		defer wg.Done()
		for _, p := range seeded {
			_ = b.Remove(ctx, p.OfflineID)
		}
	}()
	wg.Wait()

	assert.Equal(t, 30, b.QueueCount(ctx))
}

func TestQueueBlobFormat(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	b := NewBuffer(store, WithClock(fixedClock), WithSuffix(sequence("k3j9x2q7a", "p0m1n2b3c")))

	require.True(t, b.SaveSaleLocally(ctx, soap()))
	require.True(t, b.SaveSaleLocally(ctx, map[string]any{
		"items":         []any{map[string]any{"id": "p9", "name": "Bread", "price": 2.5, "quantity": 1, "barcode": ""}},
		"total":         2.5,
		"paymentMethod": "Card",
	}))

	raw, err := store.Get(ctx, QueueKey)
	require.NoError(t, err)
	var pretty bytes.Buffer
	require.NoError(t, json.Indent(&pretty, raw, "", "  "))
	pretty.WriteByte('\n')

	goldie.New(t).Assert(t, "queue_blob", pretty.Bytes())
}

// Package offline holds sales recorded on the device while the server is not
// reachable. The whole queue is one JSON array stored under QueueKey; the
// Buffer serializes every read-modify-write of it.
package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// QueueKey is the storage key of the queue blob.
const QueueKey = "offlineSalesQueue"

const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Buffer owns the offline sale queue. Every change to the queue is one
// Storage.Update, so a checkout appending a sale and a sync pass removing one
// never lose each other's write, even from two processes sharing a SQLite
// file. The mutex only keeps reads in this process from overlapping writes.
type Buffer struct {
	mu     sync.Mutex
	store  Storage
	now    func() time.Time
	suffix func() string
}

type Option func(*Buffer)

// WithClock replaces time.Now for offlineId and createdAt stamping.
func WithClock(now func() time.Time) Option { return func(b *Buffer) { b.now = now } }

// WithSuffix replaces the random offlineId suffix generator.
func WithSuffix(suffix func() string) Option { return func(b *Buffer) { b.suffix = suffix } }

func NewBuffer(store Storage, opts ...Option) *Buffer {
	b := &Buffer{store: store, now: time.Now, suffix: randomSuffix}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// SaveSaleLocally appends sale to the queue. It never returns an error:
// storage and encoding failures are logged and reported as false so a broken
// disk cannot take the checkout down with it.
func (b *Buffer) SaveSaleLocally(ctx context.Context, sale any) bool {
	pending, err := b.Save(ctx, sale)
	if err != nil {
		log.Error().Err(err).Msg("offline: failed to save sale locally")
		return false
	}
	log.Info().Str("offline_id", pending.OfflineID).Msg("offline: sale queued")
	return true
}

// Save is SaveSaleLocally returning the queued sale or the failure.
func (b *Buffer) Save(ctx context.Context, sale any) (PendingSale, error) {
	raw, err := json.Marshal(sale)
	if err != nil {
		return PendingSale{}, fmt.Errorf("encode sale: %w", err)
	}
	fields, err := objectFields(raw)
	if err != nil {
		return PendingSale{}, err
	}
	delete(fields, fieldOfflineID)
	delete(fields, fieldCreatedAt)
	delete(fields, fieldSynced)

	b.mu.Lock()
	defer b.mu.Unlock()

	var pending PendingSale
	err = b.update(ctx, func(queue []PendingSale) ([]PendingSale, error) {
		now := b.now()
		pending = PendingSale{
			OfflineID: b.newOfflineID(now, queue),
			CreatedAt: now.UTC().Format(createdAtLayout),
			Synced:    false,
			Fields:    fields,
		}
		return append(queue, pending), nil
	})
	if err != nil {
		return PendingSale{}, err
	}
	return pending, nil
}

// newOfflineID returns "<unix millis>-<suffix>", drawing a new suffix while
// the candidate is already taken.
func (b *Buffer) newOfflineID(now time.Time, queue []PendingSale) string {
	taken := make(map[string]struct{}, len(queue))
	for _, p := range queue {
		taken[p.OfflineID] = struct{}{}
	}
	prefix := strconv.FormatInt(now.UnixMilli(), 10) + "-"
	for {
		id := prefix + b.suffix()
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}

// QueueCount returns the number of queued sales, or 0 when the queue cannot
// be read.
func (b *Buffer) QueueCount(ctx context.Context) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	queue, err := b.load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("offline: failed to read queue")
		return 0
	}
	return len(queue)
}

// Pending returns a snapshot of the queue in insertion order.
func (b *Buffer) Pending(ctx context.Context) ([]PendingSale, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Remove deletes the sale with offlineID from the current queue and persists
// the result. Unknown ids are a no-op.
func (b *Buffer) Remove(ctx context.Context, offlineID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.update(ctx, func(queue []PendingSale) ([]PendingSale, error) {
		kept := queue[:0]
		for _, p := range queue {
			if p.OfflineID != offlineID {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(queue) {
			return nil, nil
		}
		return kept, nil
	})
}

// update must be called under lock. fn gets the stored queue and returns the
// queue to store; a nil result writes nothing.
func (b *Buffer) update(ctx context.Context, fn func([]PendingSale) ([]PendingSale, error)) error {
	err := b.store.Update(ctx, QueueKey, func(raw []byte) ([]byte, error) {
		queue, err := decodeQueue(raw)
		if err != nil {
			return nil, err
		}
		next, err := fn(queue)
		if err != nil || next == nil {
			return nil, err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode queue: %w", err)
		}
		return encoded, nil
	})
	if err != nil {
		return fmt.Errorf("update queue: %w", err)
	}
	return nil
}

// load must be called under lock. A missing key is an empty queue.
func (b *Buffer) load(ctx context.Context) ([]PendingSale, error) {
	raw, err := b.store.Get(ctx, QueueKey)
	if errors.Is(err, ErrNotFound) {
		return []PendingSale{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue: %w", err)
	}
	return decodeQueue(raw)
}

// decodeQueue parses the queue blob. An element that is not a sale object
// (null, a number, a broken stamp) is dropped with a warning rather than
// hiding every other queued sale; it disappears from storage on the next
// write.
func decodeQueue(raw []byte) ([]PendingSale, error) {
	queue := []PendingSale{}
	if len(raw) == 0 {
		return queue, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode queue: %w", err)
	}
	for i, elem := range elems {
		var p PendingSale
		if err := json.Unmarshal(elem, &p); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("offline: skipping unreadable queue entry")
			continue
		}
		queue = append(queue, p)
	}
	return queue, nil
}

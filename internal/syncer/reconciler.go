// Package syncer drains the device's offline sale queue to the server.
package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"stolarpos/internal/offline"

	"github.com/rs/zerolog/log"
)

// DefaultInterval is the period between scheduled sync passes.
const DefaultInterval = 60 * time.Second

// Queue is the consumer side of the offline buffer. *offline.Buffer satisfies it.
type Queue interface {
	Pending(ctx context.Context) ([]offline.PendingSale, error)
	Remove(ctx context.Context, offlineID string) error
}

// Reachability reports whether the server can actually be reached right now.
type Reachability interface {
	Reachable(ctx context.Context) bool
}

// Submitter delivers one queued sale. A nil error means the server
// acknowledged it and the sale may be dropped from the queue.
type Submitter interface {
	Submit(ctx context.Context, sale offline.PendingSale) error
}

type Reconciler struct {
	queue     Queue
	reach     Reachability
	submitter Submitter
	inFlight  atomic.Bool
}

func New(q Queue, r Reachability, s Submitter) *Reconciler {
	return &Reconciler{queue: q, reach: r, submitter: s}
}

// SyncWithServer runs one pass: if the server is reachable, submit queued
// sales oldest first, removing each as soon as it is acknowledged, and stop at
// the first failure. The next pass resumes from the front of what is left.
//
// A call made while another pass is running returns immediately.
func (r *Reconciler) SyncWithServer(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		log.Debug().Msg("sync: pass already running, skipping")
		return
	}
	defer r.inFlight.Store(false)

	if !r.reach.Reachable(ctx) {
		log.Debug().Msg("sync: server unreachable, skipping")
		return
	}

	pending, err := r.queue.Pending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sync: failed to read offline queue")
		return
	}
	if len(pending) == 0 {
		return
	}

	attempted, synced := 0, 0
	for _, sale := range pending {
		if ctx.Err() != nil {
			break
		}
		attempted++
		if err := r.submitter.Submit(ctx, sale); err != nil {
			log.Warn().Err(err).Str("offline_id", sale.OfflineID).Msg("sync: submit failed, stopping pass")
			break
		}
		if err := r.queue.Remove(ctx, sale.OfflineID); err != nil {
			// The server has the sale; the replay next pass is absorbed by offlineId.
			log.Error().Err(err).Str("offline_id", sale.OfflineID).Msg("sync: failed to remove synced sale")
			break
		}
		synced++
	}

	log.Info().
		Int("attempted", attempted).
		Int("synced", synced).
		Int("remaining", len(pending)-synced).
		Msg("sync: pass finished")
}

// Run syncs once immediately and then every interval until ctx is done.
// Ticks that fall due while a pass is still running are dropped.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Info().Dur("interval", interval).Msg("sync: started")

	r.SyncWithServer(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sync: shutting down")
			return
		case <-ticker.C:
			r.SyncWithServer(ctx)
		}
	}
}

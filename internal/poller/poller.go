// Package poller runs the periodic fetch/diff/notify cycle.
package poller

import (
	"context"
	"log/slog"
	"time"

	"h2s_bot/internal/diff"
	"h2s_bot/internal/model"
	"h2s_bot/internal/notifier"
	"h2s_bot/internal/storage"
)

// ListingSource returns the full current set of available listings for
// the given cities, or an error for the whole cycle.
type ListingSource interface {
	Fetch(ctx context.Context, cities model.CitySet) (model.ListingSet, error)
}

// Poller is the single long-lived loop that keeps the baseline snapshot
// up to date and fans new listings out to watchers. Exactly one cycle
// runs at a time; ticks arriving while a cycle is in flight coalesce
// instead of piling up.
type Poller struct {
	source   ListingSource
	registry *storage.Registry
	snapshot *storage.Snapshot
	notify   *notifier.Notifier
	log      *slog.Logger
	tick     time.Duration
}

// New creates a Poller with the default 15-second check interval.
func New(source ListingSource, registry *storage.Registry, snapshot *storage.Snapshot, notify *notifier.Notifier, log *slog.Logger) *Poller {
	return &Poller{
		source:   source,
		registry: registry,
		snapshot: snapshot,
		notify:   notify,
		log:      log,
		tick:     15 * time.Second,
	}
}

// SetTickInterval overrides the default check interval.
func (p *Poller) SetTickInterval(d time.Duration) {
	p.tick = d
}

// Run executes the poll loop, blocking until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	wake := p.startTimer(ctx)

	for {
		p.cycle(ctx)

		start := time.Now()
		select {
		case <-ctx.Done():
			return
		case <-wake:
		}
		p.log.Info("awake", "slept_for", time.Since(start).Round(10*time.Millisecond))
	}
}

// startTimer emits a wake signal every tick on a channel of depth 2.
// Sends are non-blocking, so signals arriving during a long cycle are
// bounded: at most two are pending, the rest are discarded.
func (p *Poller) startTimer(ctx context.Context) <-chan struct{} {
	wake := make(chan struct{}, 2)
	go func() {
		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()
	return wake
}

// cycle runs one fetch/diff/update/notify pass. The registry view and
// the snapshot are copied under short locks; the fetch and the fan-out
// happen with no lock held.
func (p *Poller) cycle(ctx context.Context) {
	observers := p.registry.Observers()
	if len(observers) == 0 {
		p.log.Info("no observers, skipping fetch")
		return
	}

	cities := make(model.CitySet)
	for _, watched := range observers {
		for c := range watched {
			cities[c] = struct{}{}
		}
	}

	current, err := p.source.Fetch(ctx, cities)
	if err != nil {
		p.log.Error("fetch listings", "error", err)
		p.notify.NotifyFetchFailure(observers)
		return
	}

	fresh := diff.NewListings(p.snapshot.Current(), current)
	p.snapshot.Replace(current)

	if len(fresh) > 0 {
		p.log.Info("new listings found", "count", len(fresh))
	}
	p.notify.NotifyNew(fresh, observers)
}

// Package connectivity tracks whether the endpoint is reachable and
// replays the offline queue when it becomes reachable again.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iudanet/invoicekeeper/internal/client/iocli"
	clientsync "github.com/iudanet/invoicekeeper/internal/client/sync"
)

// DefaultInterval is the probe period used when none is configured
const DefaultInterval = 15 * time.Second

// Индикатор состояния для пользователя
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Prober reports whether the endpoint can currently be reached
type Prober interface {
	Probe(ctx context.Context) bool
}

// Drainer replays the offline queue
type Drainer interface {
	Drain(ctx context.Context) (*clientsync.DrainResult, error)
}

// Event is a connectivity transition
type Event struct {
	At     time.Time
	Online bool
}

// Observer polls the prober, reports transitions and triggers drains
type Observer struct {
	prober   Prober
	drainer  Drainer
	io       iocli.IO
	logger   *slog.Logger
	interval time.Duration

	online  atomic.Bool
	known   atomic.Bool
	started atomic.Bool

	mu          sync.Mutex
	subscribers []chan Event
}

// NewObserver creates a connectivity observer; io may be nil to disable the indicator
func NewObserver(prober Prober, drainer Drainer, io iocli.IO, interval time.Duration, logger *slog.Logger) *Observer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{
		prober:   prober,
		drainer:  drainer,
		io:       io,
		logger:   logger,
		interval: interval,
	}
}

// Online returns the last observed state
func (o *Observer) Online() bool {
	return o.online.Load()
}

// Subscribe returns a channel receiving transitions. Slow subscribers miss events.
func (o *Observer) Subscribe() <-chan Event {
	ch := make(chan Event, 8)
	o.mu.Lock()
	o.subscribers = append(o.subscribers, ch)
	o.mu.Unlock()
	return ch
}

// Run probes immediately, drains once, then polls until ctx is done.
// Every transition to online triggers another drain.
func (o *Observer) Run(ctx context.Context) error {
	o.logger.InfoContext(ctx, "Starting connectivity observer", "interval", o.interval)

	o.Check(ctx)
	o.startupDrain(ctx)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.InfoContext(ctx, "Connectivity observer stopped")
			o.closeSubscribers()
			return nil
		case <-ticker.C:
			o.Check(ctx)
		}
	}
}

// Check probes once and handles a transition. It returns the current state.
func (o *Observer) Check(ctx context.Context) bool {
	online := o.prober.Probe(ctx)

	previous := o.online.Swap(online)
	firstProbe := !o.known.Swap(true)

	if !firstProbe && previous == online {
		return online
	}

	o.render(online)
	o.publish(Event{Online: online, At: time.Now()})

	if online && !firstProbe {
		o.logger.InfoContext(ctx, "Connection restored")
		o.Trigger(ctx)
	} else if !online {
		o.logger.WarnContext(ctx, "Connection lost")
	}

	return online
}

// Trigger runs a drain now
func (o *Observer) Trigger(ctx context.Context) *clientsync.DrainResult {
	if o.drainer == nil {
		return nil
	}

	result, err := o.drainer.Drain(ctx)
	if err != nil {
		o.logger.ErrorContext(ctx, "Queue drain failed", "error", err)
		return result
	}
	if result != nil && result.Delivered > 0 && o.io != nil {
		o.io.Printf("Synced %d queued request(s), %d pending\n", result.Delivered, result.Remaining)
	}
	return result
}

// startupDrain выполняет единственный прогон при старте процесса
func (o *Observer) startupDrain(ctx context.Context) {
	if !o.started.CompareAndSwap(false, true) {
		return
	}
	o.Trigger(ctx)
}

func (o *Observer) render(online bool) {
	if o.io == nil {
		return
	}
	if online {
		o.io.Println("Status:", StatusOnline)
		return
	}
	o.io.Println("Status:", StatusOffline)
}

func (o *Observer) publish(ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (o *Observer) closeSubscribers() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subscribers {
		close(ch)
	}
	o.subscribers = nil
}

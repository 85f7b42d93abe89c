package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/stratus-ventures/stratus-site/internal/pkg/metricsync"
	"github.com/stratus-ventures/stratus-site/internal/pkg/upstream"
)

// ErrInvalidInterval is returned by Start for intervals outside [1, 3600]
var ErrInvalidInterval = errors.New("poll interval must be between 1 and 3600 seconds")

const (
	minIntervalSeconds = 1
	maxIntervalSeconds = 3600

	// A triggered full sync gets this long before we stop waiting for
	// it. The underlying requests are not cancelled, only abandoned.
	syncTimeout = 30 * time.Second
)

// Prober performs the cheap count-only upstream call
type Prober interface {
	FetchEventCount(ctx context.Context, cfg upstream.ProductConfig) (int, error)
}

// SyncRunner triggers a full reconciliation pass
type SyncRunner interface {
	SyncAllProducts(ctx context.Context) metricsync.Result
}

// Status is a read-only snapshot of the poller state
type Status struct {
	IsRunning      bool           `json:"isRunning"`
	HasTimer       bool           `json:"hasTimer"`
	LastSyncCounts map[string]int `json:"lastSyncCounts"`
}

// Poller wakes on a fixed interval, probes every configured upstream for
// a change signal and triggers a full sync pass when any product's event
// count moved. One instance per process, owned by the application.
type Poller struct {
	prober  Prober
	syncer  SyncRunner
	configs metricsync.ConfigSource

	mu             sync.Mutex
	running        bool
	hasTimer       bool
	lastSyncCounts map[string]int
	stopCh         chan struct{}
	wg             sync.WaitGroup
}

// New creates a poller. A nil configs source falls back to the
// environment-based resolver.
func New(prober Prober, syncer SyncRunner, configs metricsync.ConfigSource) *Poller {
	if configs == nil {
		configs = upstream.GetAllProductConfigs
	}
	return &Poller{
		prober:         prober,
		syncer:         syncer,
		configs:        configs,
		lastSyncCounts: make(map[string]int),
	}
}

// Start validates the interval, arms the repeating timer and performs one
// immediate tick. A running poller is stopped first, so Start doubles as
// a restart.
func (p *Poller) Start(intervalSeconds int) error {
	if intervalSeconds < minIntervalSeconds || intervalSeconds > maxIntervalSeconds {
		log.Errorf("[Poller] Invalid interval %ds - must be between 1 and 3600 seconds", intervalSeconds)
		return ErrInvalidInterval
	}

	if p.IsRunning() {
		log.Warn("[Poller] Already running, stopping current instance")
		p.Stop()
	}

	log.Infof("[Poller] Starting with %ds interval", intervalSeconds)

	p.mu.Lock()
	p.running = true
	p.hasTimer = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(time.Duration(intervalSeconds)*time.Second, stopCh)

	return nil
}

// Stop cancels the timer and waits for the poll loop to exit. Calling it
// on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.hasTimer = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	log.Info("[Poller] Stopped")
}

// IsRunning reports whether the poll loop is active
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Status returns a snapshot for diagnostics and admin tooling
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	counts := make(map[string]int, len(p.lastSyncCounts))
	for name, count := range p.lastSyncCounts {
		counts[name] = count
	}
	return Status{
		IsRunning:      p.running,
		HasTimer:       p.hasTimer,
		LastSyncCounts: counts,
	}
}

func (p *Poller) loop(interval time.Duration, stopCh <-chan struct{}) {
	defer p.wg.Done()

	// Initial poll right away, then on every tick
	p.tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick probes all upstreams and triggers one full sync pass when any
// product's count moved. The sync runs fire-and-forget relative to the
// timer: a new tick fires even while a previous sync is still going.
func (p *Poller) tick() {
	if !p.IsRunning() {
		return
	}

	if p.checkForChanges() {
		log.Info("[Poller] Triggering realtime sync")
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runBoundedSync()
		}()
	}
}

// checkForChanges probes every configured product independently. A
// failing probe is logged and skipped; it never stops the remaining
// probes. Counts are recorded before the full sync runs so a slow sync
// cannot re-trigger on the same delta.
func (p *Poller) checkForChanges() bool {
	configs := p.configs()
	if len(configs) == 0 {
		log.Warn("[Poller] No product configurations found")
		return false
	}

	hasChanges := false
	for _, cfg := range configs {
		count, err := p.prober.FetchEventCount(context.Background(), cfg)
		if err != nil {
			log.Warnf("[Poller] Probe failed for %s: %v", cfg.Name, err)
			continue
		}

		p.mu.Lock()
		last := p.lastSyncCounts[cfg.Name]
		if count != last {
			log.Infof("[Poller] Data change detected for %s: %d -> %d", cfg.Name, last, count)
			p.lastSyncCounts[cfg.Name] = count
			hasChanges = true
		}
		p.mu.Unlock()
	}
	return hasChanges
}

// runBoundedSync races the full sync pass against the sync timeout. On
// expiry we log and move on; the sync itself keeps running to completion
// in the background.
func (p *Poller) runBoundedSync() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	done := make(chan metricsync.Result, 1)
	go func() {
		done <- p.syncer.SyncAllProducts(ctx)
	}()

	select {
	case result := <-done:
		log.Infof("[Poller] Realtime sync completed - %d successful, %d failed", result.Successful, result.Failed)
	case <-ctx.Done():
		log.Errorf("[Poller] Sync operation timed out after %s", syncTimeout)
	}
}

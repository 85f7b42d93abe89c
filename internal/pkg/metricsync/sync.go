package metricsync

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/app/repository"
	"github.com/stratus-ventures/stratus-site/internal/pkg/upstream"
)

// API is the subset of the upstream client the syncer depends on
type API interface {
	FetchMeta(ctx context.Context, cfg upstream.ProductConfig) (*upstream.ProductMeta, error)
	FetchEvents(ctx context.Context, cfg upstream.ProductConfig) ([]upstream.ProductEvent, error)
}

// ConfigSource resolves the current set of product configurations
type ConfigSource func() []upstream.ProductConfig

// Syncer pulls product metadata and events from the configured upstreams
// and reconciles them into local storage.
type Syncer struct {
	products repository.ProductRepository
	metrics  repository.MetricRepository
	api      API
	configs  ConfigSource
}

// NewSyncer creates a syncer. A nil configs source falls back to the
// environment-based resolver.
func NewSyncer(products repository.ProductRepository, metrics repository.MetricRepository, api API, configs ConfigSource) *Syncer {
	if configs == nil {
		configs = upstream.GetAllProductConfigs
	}
	return &Syncer{
		products: products,
		metrics:  metrics,
		api:      api,
		configs:  configs,
	}
}

// Result summarizes a full sync pass
type Result struct {
	Total      int `json:"totalProducts"`
	Successful int `json:"successfulSyncs"`
	Failed     int `json:"failedSyncs"`
}

// SyncAllProducts syncs every configured product concurrently. A failing
// product never cancels or blocks the others; per-product outcomes are
// gathered and reported as an aggregate.
func (s *Syncer) SyncAllProducts(ctx context.Context) Result {
	log.Info("[Sync] Starting full product sync")

	configs := s.configs()
	log.Infof("[Sync] Found %d product configurations", len(configs))

	outcomes := make([]bool, len(configs))
	var wg sync.WaitGroup
	for i, cfg := range configs {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			outcomes[i] = s.SyncSingleProduct(ctx, name)
		}(i, cfg.Name)
	}
	wg.Wait()

	result := Result{Total: len(configs)}
	for _, ok := range outcomes {
		if ok {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	log.Infof("[Sync] Full product sync completed - %d successful, %d failed", result.Successful, result.Failed)
	return result
}

// SyncAllProductMetrics is the manual entry point used by the
// /api/sync-metrics action. Same partial-failure contract as
// SyncAllProducts.
func (s *Syncer) SyncAllProductMetrics(ctx context.Context) Result {
	return s.SyncAllProducts(ctx)
}

// SyncSingleProduct ensures the product row exists (creating it lazily
// from upstream metadata) and reconciles its events. Returns true when
// the product identity was resolved, regardless of how many events were
// newly stored.
func (s *Syncer) SyncSingleProduct(ctx context.Context, name string) bool {
	var config *upstream.ProductConfig
	for _, cfg := range s.configs() {
		if cfg.Name == name {
			c := cfg
			config = &c
			break
		}
	}
	if config == nil {
		log.Warnf("[Sync] No configuration found for product %s", name)
		return false
	}

	log.Debugf("[Sync] Starting sync for %s", config.Name)

	product, err := s.ensureProductExists(ctx, *config)
	if err != nil {
		log.Errorf("[Sync] Failed to ensure product exists: %s: %v", config.Name, err)
		return false
	}

	count, err := s.SyncProductEvents(ctx, *config, product)
	if err != nil {
		log.Errorf("[Sync] Failed to store events for %s: %v", config.Name, err)
		return false
	}

	log.Debugf("[Sync] Sync completed for %s: %d new events", config.Name, count)
	return true
}

// HandleProductDataUpdate reacts to admin-side product changes. Inserts
// and updates re-run the product sync; deletions need no sync.
func (s *Syncer) HandleProductDataUpdate(ctx context.Context, name, changeType string) {
	log.Debugf("[Sync] Handling product data update: %s (%s)", name, changeType)

	switch changeType {
	case "insert", "update":
		s.SyncSingleProduct(ctx, name)
	case "delete":
		log.Debugf("[Sync] Product %s deleted - no sync needed", name)
	}
}

// ensureProductExists resolves the local product row for a config,
// probing upstream metadata only when the product is not already stored.
// The lookup is keyed by source_id.
func (s *Syncer) ensureProductExists(ctx context.Context, cfg upstream.ProductConfig) (*models.Product, error) {
	meta, err := s.api.FetchMeta(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sourceID := meta.SourceID
	if sourceID == "" {
		sourceID = sourceIDFromURL(cfg.APIURL, cfg.Name)
	}

	existing, err := s.products.GetBySourceID(sourceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := &models.Product{
		SourceID: sourceID,
		Name:     meta.Name,
		Tagline:  meta.Tagline,
		URL:      meta.URL,
	}
	if err := s.products.Create(product); err != nil {
		return nil, err
	}

	log.Infof("[Sync] Product added to database: %s", cfg.Name)
	return product, nil
}

// sourceIDFromURL derives a stable slug from the upstream hostname, used
// when the metadata document carries no source_id of its own.
func sourceIDFromURL(apiURL, fallback string) string {
	parsed, err := url.Parse(apiURL)
	if err != nil || parsed.Hostname() == "" {
		return fallback
	}
	return strings.ReplaceAll(parsed.Hostname(), ".", "-")
}

package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/app/repository"
	"github.com/stratus-ventures/stratus-site/internal/pkg/env"
	"github.com/stratus-ventures/stratus-site/internal/pkg/metricsync"
	"github.com/stratus-ventures/stratus-site/internal/pkg/poller"
)

// SyncService is the sync surface the controller depends on
type SyncService interface {
	SyncAllProducts(ctx context.Context) metricsync.Result
	SyncAllProductMetrics(ctx context.Context) metricsync.Result
}

// PollerService exposes the poller status snapshot
type PollerService interface {
	Status() poller.Status
}

// TotalsFn resolves the per-event-type counter totals
type TotalsFn func() (*models.EventTotals, error)

var (
	syncService     SyncService
	pollerService   PollerService
	syncProductRepo repository.ProductRepository
	syncMetricRepo  repository.MetricRepository
	totalsFn        TotalsFn
)

// InitializeSyncController wires the sync endpoints with their services
func InitializeSyncController(s SyncService, p PollerService, products repository.ProductRepository, metrics repository.MetricRepository, totals TotalsFn) {
	syncService = s
	pollerService = p
	syncProductRepo = products
	syncMetricRepo = metrics
	totalsFn = totals
}

// HandleSyncAll triggers a full reconciliation pass and reports a summary.
// Partial per-product failures still yield a 200 with the summary; only a
// storage failure produces a 500.
func HandleSyncAll(c *fiber.Ctx) error {
	syncService.SyncAllProducts(c.Context())

	products, err := syncProductRepo.GetAll()
	if err != nil {
		log.Errorf("[API] sync-all: failed to load products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Sync failed: " + err.Error(),
		})
	}
	metricsCount, err := syncMetricRepo.Count()
	if err != nil {
		log.Errorf("[API] sync-all: failed to count metrics: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Sync failed: " + err.Error(),
		})
	}

	productList := make([]fiber.Map, 0, len(products))
	for _, product := range products {
		productList = append(productList, fiber.Map{
			"name":    product.Name,
			"url":     product.URL,
			"tagline": product.Tagline,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "All products synced successfully",
		"summary": fiber.Map{
			"productsCount": len(products),
			"metricsCount":  metricsCount,
			"products":      productList,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleSyncMetrics is the manual entry point for scheduled jobs. It
// reports per-product success/failure counts.
func HandleSyncMetrics(c *fiber.Ctx) error {
	log.Info("[API] Starting metrics sync for all live products")

	result := syncService.SyncAllProductMetrics(c.Context())

	return c.JSON(fiber.Map{
		"success":         true,
		"totalProducts":   result.Total,
		"successfulSyncs": result.Successful,
		"failedSyncs":     result.Failed,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// HandlePollerStatus returns the poller's diagnostic snapshot
func HandlePollerStatus(c *fiber.Ctx) error {
	status := pollerService.Status()

	return c.JSON(fiber.Map{
		"status": "success",
		"poller": fiber.Map{
			"isRunning":      status.IsRunning,
			"hasTimer":       status.HasTimer,
			"lastSyncCounts": status.LastSyncCounts,
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"environment":    env.GetEnv("APP_ENV", "prod"),
		},
	})
}

// HandleGlobeEvents returns the most recent geo-plotted events for the
// globe visualization
func HandleGlobeEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	metrics, err := syncMetricRepo.GetRecent(limit)
	if err != nil {
		log.Errorf("[API] globe-events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load events",
		})
	}

	events := make([]fiber.Map, 0, len(metrics))
	for _, m := range metrics {
		events = append(events, fiber.Map{
			"event_type":   m.EventType,
			"origin_lat":   m.OriginLat,
			"origin_long":  m.OriginLong,
			"city_code":    m.CityCode,
			"country_code": m.CountryCode,
			"created_at":   m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"events":  events,
	})
}

// HandleMetricsSummary serves the aggregated dashboard counters
func HandleMetricsSummary(c *fiber.Ctx) error {
	totals, err := totalsFn()
	if err != nil {
		log.Errorf("[API] metrics-summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load metric totals",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"totals":  totals,
	})
}

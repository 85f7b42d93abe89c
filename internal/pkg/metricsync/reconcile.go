package metricsync

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/internal/pkg/upstream"
)

// SyncProductEvents fetches the upstream's event list and appends only
// the net-new rows. Deduplication runs against the stored source_ids and
// content signatures for the product; events without an upstream
// identifier get a synthesized "<product-slug>-event-<n>" id whose
// counter is recovered from storage, so it stays monotonic across
// process restarts.
//
// Upstream fetch failures are contained here (zero count, nil error);
// storage failures are returned to the caller.
func (s *Syncer) SyncProductEvents(ctx context.Context, cfg upstream.ProductConfig, product *models.Product) (int, error) {
	events, err := s.api.FetchEvents(ctx, cfg)
	if err != nil {
		log.Errorf("[Sync] Failed to fetch events for %s: %v", cfg.Name, err)
		return 0, nil
	}
	if len(events) == 0 {
		return 0, nil
	}

	storedIDs, err := s.metrics.GetSourceIDs(product.ID)
	if err != nil {
		return 0, err
	}
	storedSigs, err := s.metrics.GetSignatures(product.ID)
	if err != nil {
		return 0, err
	}

	seenIDs := make(map[string]bool, len(storedIDs))
	for _, id := range storedIDs {
		seenIDs[id] = true
	}
	seenSigs := make(map[string]bool, len(storedSigs))
	for _, sig := range storedSigs {
		seenSigs[sig] = true
	}

	prefix := product.SourceID + "-event-"
	sequence, err := s.metrics.MaxEventSequence(product.ID, prefix)
	if err != nil {
		return 0, err
	}

	newMetrics := make([]models.Metric, 0, len(events))
	for _, event := range events {
		metric := models.Metric{
			SourceID:    event.SourceID,
			EventType:   event.EventType,
			OriginLat:   event.OriginLat,
			OriginLong:  event.OriginLong,
			CityCode:    event.CityCode,
			CountryCode: event.CountryCode,
			FromProduct: product.ID,
		}
		signature := metric.Signature()

		if metric.SourceID != "" {
			if seenIDs[metric.SourceID] {
				continue
			}
		} else {
			if seenSigs[signature] {
				continue
			}
			sequence++
			metric.SourceID = fmt.Sprintf("%s%d", prefix, sequence)
		}

		seenIDs[metric.SourceID] = true
		seenSigs[signature] = true
		newMetrics = append(newMetrics, metric)
	}

	if len(newMetrics) == 0 {
		return 0, nil
	}
	if err := s.metrics.InsertBatch(newMetrics); err != nil {
		return 0, err
	}

	log.Infof("[Sync] Events synced for product %s: %d new", cfg.Name, len(newMetrics))
	return len(newMetrics), nil
}

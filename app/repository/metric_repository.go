package repository

import (
	"strconv"
	"strings"

	"github.com/stratus-ventures/stratus-site/app/models"
	"gorm.io/gorm"
)

// metricRepository implements the MetricRepository interface
type metricRepository struct {
	db *gorm.DB
}

// NewMetricRepository creates a new metric repository instance
func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &metricRepository{db: db}
}

// InsertBatch inserts metrics in a single batch
func (r *metricRepository) InsertBatch(metrics []models.Metric) error {
	if len(metrics) == 0 {
		return nil
	}
	return r.db.Create(&metrics).Error
}

// GetSourceIDs returns the source_ids already stored for a product
func (r *metricRepository) GetSourceIDs(productID uint64) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Metric{}).
		Where("from_product = ?", productID).
		Pluck("source_id", &ids).Error
	return ids, err
}

// GetSignatures returns the content signatures already stored for a product
func (r *metricRepository) GetSignatures(productID uint64) ([]string, error) {
	var metrics []models.Metric
	err := r.db.
		Select("event_type", "origin_lat", "origin_long", "city_code", "country_code").
		Where("from_product = ?", productID).
		Find(&metrics).Error
	if err != nil {
		return nil, err
	}

	signatures := make([]string, 0, len(metrics))
	for i := range metrics {
		signatures = append(signatures, metrics[i].Signature())
	}
	return signatures, nil
}

// MaxEventSequence recovers the per-product sequence counter from storage.
// The numeric suffix is parsed in Go, the query itself stays a plain LIKE.
func (r *metricRepository) MaxEventSequence(productID uint64, prefix string) (int, error) {
	var ids []string
	err := r.db.Model(&models.Metric{}).
		Where("from_product = ? AND source_id LIKE ?", productID, prefix+"%").
		Pluck("source_id", &ids).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, id := range ids {
		suffix := strings.TrimPrefix(id, prefix)
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// GetRecent returns the newest metrics, e.g. for the globe endpoint
func (r *metricRepository) GetRecent(limit int) ([]models.Metric, error) {
	var metrics []models.Metric
	err := r.db.Order("created_at DESC").Limit(limit).Find(&metrics).Error
	return metrics, err
}

// Count returns the total number of stored metrics
func (r *metricRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Metric{}).Count(&count).Error
	return count, err
}

// CountByProduct returns the number of stored metrics for one product
func (r *metricRepository) CountByProduct(productID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Metric{}).Where("from_product = ?", productID).Count(&count).Error
	return count, err
}

// GetEventTotals aggregates per-event-type counters for the dashboard
func (r *metricRepository) GetEventTotals() (*models.EventTotals, error) {
	type row struct {
		EventType string
		Total     int64
	}

	var rows []row
	err := r.db.Model(&models.Metric{}).
		Select("event_type, COUNT(*) AS total").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := &models.EventTotals{}
	for _, rw := range rows {
		switch rw.EventType {
		case models.EventUserCreated:
			totals.UserCreatedTotal = rw.Total
		case models.EventDownloadStarted:
			totals.DownloadStartedTotal = rw.Total
		case models.EventSubscriptionActivated:
			totals.SubscriptionActivatedTotal = rw.Total
		}
	}
	return totals, nil
}

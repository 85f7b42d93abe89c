package repository

import (
	"github.com/stratus-ventures/stratus-site/app/models"
	"gorm.io/gorm"
)

// ProductRepository defines the interface for product-related database operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint64) (*models.Product, error)
	GetByUUID(uuid string) (*models.Product, error)
	GetBySourceID(sourceID string) (*models.Product, error)
	GetAll() ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id uint64) error
	Count() (int64, error)
}

// MetricRepository defines the interface for metric-related database operations
type MetricRepository interface {
	InsertBatch(metrics []models.Metric) error
	GetSourceIDs(productID uint64) ([]string, error)
	GetSignatures(productID uint64) ([]string, error)
	// MaxEventSequence returns the highest <n> among stored source_ids of
	// the form "<prefix><n>" for the given product, 0 when none exist.
	MaxEventSequence(productID uint64, prefix string) (int, error)
	GetRecent(limit int) ([]models.Metric, error)
	Count() (int64, error)
	CountByProduct(productID uint64) (int64, error)
	GetEventTotals() (*models.EventTotals, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Product ProductRepository
	Metric  MetricRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product: NewProductRepository(db),
		Metric:  NewMetricRepository(db),
	}
}

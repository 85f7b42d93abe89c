package controllers

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/internal/pkg/metricsync"
	"github.com/stratus-ventures/stratus-site/internal/pkg/poller"
)

type stubProductRepo struct {
	mu       sync.Mutex
	nextID   uint64
	products map[uint64]*models.Product

	getAllErr error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: map[uint64]*models.Product{}}
}

func (r *stubProductRepo) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *stubProductRepo) GetByID(id uint64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) GetByUUID(uuid string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.UUID == uuid {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) GetBySourceID(sourceID string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SourceID == sourceID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) GetAll() ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getAllErr != nil {
		return nil, r.getAllErr
	}
	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, *p)
	}
	return all, nil
}

func (r *stubProductRepo) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type stubMetricRepo struct {
	mu      sync.Mutex
	metrics []models.Metric

	recentErr error
}

func (r *stubMetricRepo) InsertBatch(metrics []models.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, metrics...)
	return nil
}

func (r *stubMetricRepo) GetSourceIDs(uint64) ([]string, error)  { return nil, nil }
func (r *stubMetricRepo) GetSignatures(uint64) ([]string, error) { return nil, nil }
func (r *stubMetricRepo) MaxEventSequence(uint64, string) (int, error) {
	return 0, nil
}

func (r *stubMetricRepo) GetRecent(limit int) ([]models.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recentErr != nil {
		return nil, r.recentErr
	}
	if limit > len(r.metrics) {
		limit = len(r.metrics)
	}
	recent := make([]models.Metric, limit)
	copy(recent, r.metrics[len(r.metrics)-limit:])
	return recent, nil
}

func (r *stubMetricRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.metrics)), nil
}

func (r *stubMetricRepo) CountByProduct(uint64) (int64, error) { return 0, nil }

func (r *stubMetricRepo) GetEventTotals() (*models.EventTotals, error) {
	return &models.EventTotals{}, nil
}

type stubSyncService struct {
	mu     sync.Mutex
	result metricsync.Result
	calls  int
}

func (s *stubSyncService) SyncAllProducts(context.Context) metricsync.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result
}

func (s *stubSyncService) SyncAllProductMetrics(ctx context.Context) metricsync.Result {
	return s.SyncAllProducts(ctx)
}

type stubPollerService struct {
	status poller.Status
}

func (s *stubPollerService) Status() poller.Status { return s.status }

type notifierRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (n *notifierRecorder) HandleProductDataUpdate(_ context.Context, name, changeType string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, name+":"+changeType)
}

func (n *notifierRecorder) recorded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

package metricsync

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/internal/pkg/upstream"
)

// fakeProductRepo is an in-memory ProductRepository
type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint64
	products map[uint64]*models.Product

	createErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uint64]*models.Product{}}
}

func (r *fakeProductRepo) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, p := range r.products {
		if p.SourceID == product.SourceID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	product.ID = r.nextID
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) GetByID(id uint64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) GetByUUID(uuid string) (*models.Product, error) {
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

func (r *fakeProductRepo) GetBySourceID(sourceID string) (*models.Product, error) {
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

func (r *fakeProductRepo) GetAll() ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, *p)
	}
	return all, nil
}

func (r *fakeProductRepo) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

// fakeMetricRepo is an in-memory MetricRepository
type fakeMetricRepo struct {
	mu      sync.Mutex
	metrics []models.Metric

	insertErr error
	readErr   error
}

func newFakeMetricRepo() *fakeMetricRepo {
	return &fakeMetricRepo{}
}

func (r *fakeMetricRepo) InsertBatch(metrics []models.Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.metrics = append(r.metrics, metrics...)
	return nil
}

func (r *fakeMetricRepo) GetSourceIDs(productID uint64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	var ids []string
	for _, m := range r.metrics {
		if m.FromProduct == productID {
			ids = append(ids, m.SourceID)
		}
	}
	return ids, nil
}

func (r *fakeMetricRepo) GetSignatures(productID uint64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	var sigs []string
	for i := range r.metrics {
		if r.metrics[i].FromProduct == productID {
			sigs = append(sigs, r.metrics[i].Signature())
		}
	}
	return sigs, nil
}

func (r *fakeMetricRepo) MaxEventSequence(productID uint64, prefix string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return 0, r.readErr
	}
	max := 0
	for _, m := range r.metrics {
		if m.FromProduct != productID || !strings.HasPrefix(m.SourceID, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(m.SourceID, prefix)); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (r *fakeMetricRepo) GetRecent(limit int) ([]models.Metric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.metrics) {
		limit = len(r.metrics)
	}
	recent := make([]models.Metric, limit)
	copy(recent, r.metrics[len(r.metrics)-limit:])
	return recent, nil
}

func (r *fakeMetricRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.metrics)), nil
}

func (r *fakeMetricRepo) CountByProduct(productID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.metrics {
		if m.FromProduct == productID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMetricRepo) GetEventTotals() (*models.EventTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &models.EventTotals{}
	for _, m := range r.metrics {
		switch m.EventType {
		case models.EventUserCreated:
			totals.UserCreatedTotal++
		case models.EventDownloadStarted:
			totals.DownloadStartedTotal++
		case models.EventSubscriptionActivated:
			totals.SubscriptionActivatedTotal++
		}
	}
	return totals, nil
}

func (r *fakeMetricRepo) sourceIDsFor(productID uint64) []string {
	ids, _ := r.GetSourceIDs(productID)
	return ids
}

// fakeAPI serves canned upstream responses per product name
type fakeAPI struct {
	mu        sync.Mutex
	meta      map[string]*upstream.ProductMeta
	events    map[string][]upstream.ProductEvent
	metaErr   map[string]error
	eventsErr map[string]error

	metaCalls   int
	eventsCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		meta:      map[string]*upstream.ProductMeta{},
		events:    map[string][]upstream.ProductEvent{},
		metaErr:   map[string]error{},
		eventsErr: map[string]error{},
	}
}

func (a *fakeAPI) FetchMeta(_ context.Context, cfg upstream.ProductConfig) (*upstream.ProductMeta, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metaCalls++
	if err := a.metaErr[cfg.Name]; err != nil {
		return nil, err
	}
	if meta, ok := a.meta[cfg.Name]; ok {
		return meta, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (a *fakeAPI) FetchEvents(_ context.Context, cfg upstream.ProductConfig) ([]upstream.ProductEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventsCalls++
	if err := a.eventsErr[cfg.Name]; err != nil {
		return nil, err
	}
	return a.events[cfg.Name], nil
}

func staticConfigs(configs ...upstream.ProductConfig) ConfigSource {
	return func() []upstream.ProductConfig { return configs }
}

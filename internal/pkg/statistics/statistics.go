package statistics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/stratus-ventures/stratus-site/app/models"
	"github.com/stratus-ventures/stratus-site/app/repository"
	"github.com/stratus-ventures/stratus-site/internal/pkg/cache"
)

const (
	CacheKeyUserCreated           = "statistics:events:user_created"
	CacheKeyDownloadStarted       = "statistics:events:download_started"
	CacheKeySubscriptionActivated = "statistics:events:subscription_activated"
	CacheExpiration               = 30 * time.Minute
)

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// Backend seams, swapped in tests
var (
	cacheGetInt  = cache.GetInt
	cacheSet     = cache.Set
	totalsFromDB = func() (*models.EventTotals, error) {
		return repository.GetGlobalFactory().GetMetricRepository().GetEventTotals()
	}
)

// ShouldUpdateCache reports whether the counter cache is due for a refresh
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the counter cache when the refresh window
// has passed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Errorf("[Statistics] Failed to update counter cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next UpdateCacheIfNeeded to refresh
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recomputes the per-event-type totals from the
// database and stores them in the cache
func UpdateStatisticsCache() error {
	totals, err := totalsFromDB()
	if err != nil {
		return err
	}

	entries := map[string]int64{
		CacheKeyUserCreated:           totals.UserCreatedTotal,
		CacheKeyDownloadStarted:       totals.DownloadStartedTotal,
		CacheKeySubscriptionActivated: totals.SubscriptionActivatedTotal,
	}
	for key, value := range entries {
		if err := cacheSet(key, strconv.FormatInt(value, 10), CacheExpiration); err != nil {
			return err
		}
	}

	log.Infof("[Statistics] Counter cache updated: users=%d downloads=%d subscriptions=%d",
		totals.UserCreatedTotal, totals.DownloadStartedTotal, totals.SubscriptionActivatedTotal)
	return nil
}

// GetEventTotals serves the dashboard counters. The cache is refreshed
// first when its window has passed, then reads prefer the cache and fall
// back to the database on a miss.
func GetEventTotals() (*models.EventTotals, error) {
	UpdateCacheIfNeeded()

	users, errUsers := cacheGetInt(CacheKeyUserCreated)
	downloads, errDownloads := cacheGetInt(CacheKeyDownloadStarted)
	subscriptions, errSubs := cacheGetInt(CacheKeySubscriptionActivated)

	if errUsers == nil && errDownloads == nil && errSubs == nil {
		return &models.EventTotals{
			UserCreatedTotal:           int64(users),
			DownloadStartedTotal:       int64(downloads),
			SubscriptionActivatedTotal: int64(subscriptions),
		}, nil
	}

	return totalsFromDB()
}

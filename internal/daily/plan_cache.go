package daily

import (
	"encoding/json"
	"time"

	"github.com/2beens/fitcoach/internal/telemetry/metrics"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// PlanCache keeps the active plan menu per customer for a short time.
// A customer without an active plan is cached as an empty PlanMenu.
type PlanCache struct {
	cache          *freecache.Cache
	ttlSeconds     int
	metricsManager *metrics.Manager
}

func NewPlanCache(sizeMB int, ttl time.Duration, metricsManager *metrics.Manager) *PlanCache {
	return &PlanCache{
		cache:          freecache.NewCache(sizeMB * megabyte),
		ttlSeconds:     int(ttl.Seconds()),
		metricsManager: metricsManager,
	}
}

func (c *PlanCache) Get(customerID uuid.UUID) (*PlanMenu, bool) {
	if c == nil || c.ttlSeconds <= 0 {
		return nil, false
	}

	menuBytes, err := c.cache.Get(customerID[:])
	if err != nil {
		c.count("miss")
		return nil, false
	}

	menu := &PlanMenu{}
	if err := json.Unmarshal(menuBytes, menu); err != nil {
		log.Errorf("failed to unmarshal plan menu from cache for customer %s: %s", customerID, err)
		c.count("miss")
		return nil, false
	}

	c.count("hit")
	return menu, true
}

func (c *PlanCache) Set(customerID uuid.UUID, menu *PlanMenu) {
	if c == nil || c.ttlSeconds <= 0 || menu == nil {
		return
	}

	menuBytes, err := json.Marshal(menu)
	if err != nil {
		log.Errorf("failed to marshal plan menu for customer %s: %s", customerID, err)
		return
	}
	if err := c.cache.Set(customerID[:], menuBytes, c.ttlSeconds); err != nil {
		log.Errorf("failed to write plan menu cache for customer %s: %s", customerID, err)
	}
}

func (c *PlanCache) Invalidate(customerID uuid.UUID) {
	if c == nil {
		return
	}
	c.cache.Del(customerID[:])
}

func (c *PlanCache) count(result string) {
	if c.metricsManager != nil {
		c.metricsManager.CounterPlanCache.WithLabelValues(result).Inc()
	}
}

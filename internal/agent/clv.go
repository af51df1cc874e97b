package agent

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/yourusername/sharpline/internal/models"
)

// CLVHistory supplies the trailing average closing line value for a
// (sportsbook, market) pair. The boolean is false when no history exists.
type CLVHistory interface {
	AverageCLV(ctx context.Context, sportsbook string, market models.MarketType) (float64, bool, error)
}

type clvEntry struct {
	avg   float64
	known bool
}

// CachedCLVHistory memoizes CLV lookups for the duration of a run. The agent
// scores many signals against few (sportsbook, market) pairs, so the trailing
// aggregate query only needs to run once per pair.
type CachedCLVHistory struct {
	source CLVHistory
	cache  *gocache.Cache
}

// NewCachedCLVHistory wraps a CLV source with a TTL cache
func NewCachedCLVHistory(source CLVHistory, ttl time.Duration) *CachedCLVHistory {
	return &CachedCLVHistory{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// AverageCLV returns the cached trailing CLV, querying the source on a miss
func (c *CachedCLVHistory) AverageCLV(ctx context.Context, sportsbook string, market models.MarketType) (float64, bool, error) {
	key := fmt.Sprintf("%s|%s", sportsbook, market)
	if cached, found := c.cache.Get(key); found {
		entry := cached.(clvEntry)
		return entry.avg, entry.known, nil
	}

	avg, known, err := c.source.AverageCLV(ctx, sportsbook, market)
	if err != nil {
		return 0, false, err
	}

	c.cache.SetDefault(key, clvEntry{avg: avg, known: known})
	return avg, known, nil
}

package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// CatalogStore is the persistence surface the catalog service needs.
// *repository.TestSeriesRepository implements it.
type CatalogStore interface {
	ListActive(ctx context.Context) ([]models.TestSeries, error)
	GetByCode(ctx context.Context, code string) (*models.TestSeries, error)
	UpdatePrice(ctx context.Context, code string, expectedOld, newPrice int, rec *models.PriceHistory) (*models.TestSeries, error)
}

// HistoryStore is the ledger read surface.
// *repository.PriceHistoryRepository implements it.
type HistoryStore interface {
	ListByCode(ctx context.Context, code string, limit int) ([]models.PriceHistory, error)
}

// ListCache caches the active listing. May be nil when Redis is unavailable;
// the service then reads straight from the store.
type ListCache interface {
	GetActiveList(ctx context.Context) ([]models.TestSeries, error)
	SetActiveList(ctx context.Context, list []models.TestSeries) error
	Invalidate(ctx context.Context) error
}

// PriceNotifier is implemented by the SSE hub to push price changes to
// connected admin dashboards.
type PriceNotifier interface {
	NotifyPriceUpdated(result *PriceUpdateResult)
}

// CatalogService exposes the test-series catalog and the price-update
// workflow with its audit trail.
type CatalogService struct {
	store    CatalogStore
	history  HistoryStore
	cache    ListCache
	notifier PriceNotifier
}

// NewCatalogService constructs a CatalogService. cache and notifier are
// optional.
func NewCatalogService(store CatalogStore, history HistoryStore) *CatalogService {
	return &CatalogService{store: store, history: history}
}

// SetListCache wires the Redis listing cache.
func (s *CatalogService) SetListCache(cache ListCache) { s.cache = cache }

// SetPriceNotifier wires the admin event stream.
func (s *CatalogService) SetPriceNotifier(n PriceNotifier) { s.notifier = n }

// PriceUpdateResult is the before/after state returned to the caller on a
// successful price update.
type PriceUpdateResult struct {
	ProductCode string    `json:"productId"`
	Name        string    `json:"name"`
	OldPrice    int       `json:"oldPrice"`
	NewPrice    int       `json:"newPrice"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListActive returns active catalog entries ordered by name, serving from
// the cache when possible.
func (s *CatalogService) ListActive(ctx context.Context) ([]models.TestSeries, error) {
	if s.cache != nil {
		if list, err := s.cache.GetActiveList(ctx); err == nil {
			return list, nil
		}
	}

	list, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetActiveList(ctx, list); err != nil {
			log.Warn().Err(err).Msg("Failed to cache catalog listing")
		}
	}
	return list, nil
}

// GetByCode returns a single active catalog entry.
func (s *CatalogService) GetByCode(ctx context.Context, code string) (*models.TestSeries, error) {
	return s.store.GetByCode(ctx, code)
}

// GetHistory returns the price-change ledger for a product, newest first.
// Limits outside 1..MaxHistoryLimit are clamped to repository.MaxHistoryLimit
// here so the cap holds regardless of the backing store. The product must
// exist and be active.
func (s *CatalogService) GetHistory(ctx context.Context, code string, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 || limit > repository.MaxHistoryLimit {
		limit = repository.MaxHistoryLimit
	}
	if _, err := s.store.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.history.ListByCode(ctx, code, limit)
}

// UpdatePrice validates and applies a price change for the named product,
// appending an audit record in the same transaction as the catalog write.
//
// The checks run in a fixed order and the first failure short-circuits:
// presence, numeric, range, whole number, product existence, no-op. Audit
// metadata (actor, sourceIP) never blocks the operation; empty values are
// recorded as "unknown". No write of any kind happens on a validation
// failure.
func (s *CatalogService) UpdatePrice(ctx context.Context, code string, proposed *float64, actor, sourceIP string) (*PriceUpdateResult, error) {
	// 1. Presence
	if proposed == nil {
		return nil, utils.ErrPriceRequired
	}
	// 2. Finite number
	if math.IsNaN(*proposed) || math.IsInf(*proposed, 0) {
		return nil, utils.ErrPriceNotNumber
	}
	// 3. Range
	if *proposed < models.MinPrice || *proposed > models.MaxPrice {
		return nil, utils.ErrPriceOutOfRange
	}
	// 4. Whole number
	if *proposed != math.Trunc(*proposed) {
		return nil, utils.ErrPriceNotWhole
	}
	newPrice := int(*proposed)

	// 5. Existence (active entries only)
	ts, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// 6. No-op: idempotent re-submission is rejected, not silently accepted.
	if newPrice == ts.Price {
		return nil, utils.ErrPriceUnchanged
	}

	if actor == "" {
		actor = models.UnknownActor
	}
	if sourceIP == "" {
		sourceIP = models.UnknownActor
	}

	rec := &models.PriceHistory{
		ProductCode: ts.Code,
		OldPrice:    ts.Price,
		NewPrice:    newPrice,
		ChangedBy:   actor,
		ChangedAt:   time.Now().UTC(),
		SourceIP:    sourceIP,
		Reason:      models.PriceChangeReason(ts.Price, newPrice),
	}

	updated, err := s.store.UpdatePrice(ctx, ts.Code, ts.Price, newPrice, rec)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Str("code", ts.Code).Msg("Failed to invalidate catalog cache")
		}
	}

	result := &PriceUpdateResult{
		ProductCode: updated.Code,
		Name:        updated.Name,
		OldPrice:    rec.OldPrice,
		NewPrice:    updated.Price,
		UpdatedAt:   updated.UpdatedAt,
	}

	log.Info().
		Str("code", result.ProductCode).
		Int("old_price", result.OldPrice).
		Int("new_price", result.NewPrice).
		Str("changed_by", actor).
		Str("source_ip", sourceIP).
		Msg("Price updated")

	if s.notifier != nil {
		s.notifier.NotifyPriceUpdated(result)
	}
	return result, nil
}

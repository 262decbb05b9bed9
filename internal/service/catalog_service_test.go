package service

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// fakeCatalogStore implements CatalogStore and HistoryStore in memory,
// mirroring the conditional-write semantics of the postgres repository.
type fakeCatalogStore struct {
	series  map[string]*models.TestSeries
	history []models.PriceHistory
	writes  int
}

func newFakeCatalogStore(series ...models.TestSeries) *fakeCatalogStore {
	f := &fakeCatalogStore{series: map[string]*models.TestSeries{}}
	for i := range series {
		ts := series[i]
		f.series[ts.Code] = &ts
	}
	return f
}

func (f *fakeCatalogStore) ListActive(ctx context.Context) ([]models.TestSeries, error) {
	out := []models.TestSeries{}
	for _, ts := range f.series {
		if ts.IsActive {
			out = append(out, *ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCatalogStore) GetByCode(ctx context.Context, code string) (*models.TestSeries, error) {
	ts, ok := f.series[code]
	if !ok || !ts.IsActive {
		return nil, utils.ErrTestSeriesNotFound
	}
	cp := *ts
	return &cp, nil
}

func (f *fakeCatalogStore) UpdatePrice(ctx context.Context, code string, expectedOld, newPrice int, rec *models.PriceHistory) (*models.TestSeries, error) {
	ts, ok := f.series[code]
	if !ok || !ts.IsActive {
		return nil, utils.ErrTestSeriesNotFound
	}
	if ts.Price != expectedOld {
		return nil, utils.ErrPriceConflict
	}
	ts.Price = newPrice
	ts.UpdatedAt = time.Now().UTC()
	f.history = append(f.history, *rec)
	f.writes++
	cp := *ts
	return &cp, nil
}

func (f *fakeCatalogStore) ListByCode(ctx context.Context, code string, limit int) ([]models.PriceHistory, error) {
	out := []models.PriceHistory{}
	for i := len(f.history) - 1; i >= 0 && len(out) < limit; i-- {
		if f.history[i].ProductCode == code {
			out = append(out, f.history[i])
		}
	}
	return out, nil
}

func iat() models.TestSeries {
	return models.TestSeries{
		ID: 1, Code: "iat", Name: "IAT Test Series", Price: 199, IsActive: true,
	}
}

func fptr(v float64) *float64 { return &v }

func newTestService(series ...models.TestSeries) (*CatalogService, *fakeCatalogStore) {
	store := newFakeCatalogStore(series...)
	return NewCatalogService(store, store), store
}

func TestUpdatePrice_Success(t *testing.T) {
	svc, store := newTestService(iat())

	res, err := svc.UpdatePrice(context.Background(), "iat", fptr(249), "admin@x.com", "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, "iat", res.ProductCode)
	assert.Equal(t, "IAT Test Series", res.Name)
	assert.Equal(t, 199, res.OldPrice)
	assert.Equal(t, 249, res.NewPrice)
	assert.WithinDuration(t, time.Now(), res.UpdatedAt, 5*time.Second)

	// Catalog reflects the new price.
	ts, err := svc.GetByCode(context.Background(), "iat")
	require.NoError(t, err)
	assert.Equal(t, 249, ts.Price)

	// Exactly one audit record, fully populated.
	require.Len(t, store.history, 1)
	rec := store.history[0]
	assert.Equal(t, "iat", rec.ProductCode)
	assert.Equal(t, 199, rec.OldPrice)
	assert.Equal(t, 249, rec.NewPrice)
	assert.Equal(t, "admin@x.com", rec.ChangedBy)
	assert.Equal(t, "1.2.3.4", rec.SourceIP)
	assert.Equal(t, "Price updated from 199 to 249", rec.Reason)
	assert.WithinDuration(t, time.Now(), rec.ChangedAt, 5*time.Second)
}

func TestUpdatePrice_ValidationOrder(t *testing.T) {
	// Each case must fail on its specific check and leave state untouched.
	tests := []struct {
		name     string
		code     string
		proposed *float64
		wantErr  error
	}{
		{"missing price", "iat", nil, utils.ErrPriceRequired},
		{"nan", "iat", fptr(math.NaN()), utils.ErrPriceNotNumber},
		{"positive inf", "iat", fptr(math.Inf(1)), utils.ErrPriceNotNumber},
		{"below range", "iat", fptr(0), utils.ErrPriceOutOfRange},
		{"negative", "iat", fptr(-5), utils.ErrPriceOutOfRange},
		{"above range", "iat", fptr(100000), utils.ErrPriceOutOfRange},
		{"fractional", "iat", fptr(49.5), utils.ErrPriceNotWhole},
		{"fractional near current", "iat", fptr(199.5), utils.ErrPriceNotWhole},
		{"unknown product", "unknown-id", fptr(100), utils.ErrTestSeriesNotFound},
		{"unchanged", "iat", fptr(199), utils.ErrPriceUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(iat())

			_, err := svc.UpdatePrice(context.Background(), tt.code, tt.proposed, "admin@x.com", "1.2.3.4")
			assert.ErrorIs(t, err, tt.wantErr)

			// Zero writes on any validation failure.
			assert.Zero(t, store.writes)
			assert.Empty(t, store.history)

			ts, gerr := store.GetByCode(context.Background(), "iat")
			require.NoError(t, gerr)
			assert.Equal(t, 199, ts.Price)
		})
	}
}

func TestUpdatePrice_RangeCheckedBeforeIntegrality(t *testing.T) {
	// 100000.5 violates both range and wholeness; range must win.
	svc, _ := newTestService(iat())
	_, err := svc.UpdatePrice(context.Background(), "iat", fptr(100000.5), "", "")
	assert.ErrorIs(t, err, utils.ErrPriceOutOfRange)
}

func TestUpdatePrice_InactiveSeriesNotFound(t *testing.T) {
	series := iat()
	series.IsActive = false
	svc, _ := newTestService(series)

	_, err := svc.UpdatePrice(context.Background(), "iat", fptr(249), "admin@x.com", "1.2.3.4")
	assert.ErrorIs(t, err, utils.ErrTestSeriesNotFound)
}

func TestUpdatePrice_UnknownAuditMetadataDefaults(t *testing.T) {
	svc, store := newTestService(iat())

	_, err := svc.UpdatePrice(context.Background(), "iat", fptr(299), "", "")
	require.NoError(t, err)

	require.Len(t, store.history, 1)
	assert.Equal(t, models.UnknownActor, store.history[0].ChangedBy)
	assert.Equal(t, models.UnknownActor, store.history[0].SourceIP)
}

func TestUpdatePrice_BoundaryPrices(t *testing.T) {
	svc, _ := newTestService(iat())

	res, err := svc.UpdatePrice(context.Background(), "iat", fptr(1), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewPrice)

	res, err = svc.UpdatePrice(context.Background(), "iat", fptr(99999), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 1, res.OldPrice)
	assert.Equal(t, 99999, res.NewPrice)
}

func TestUpdatePrice_SequentialUpdatesChainInLedger(t *testing.T) {
	svc, store := newTestService(iat())
	ctx := context.Background()

	_, err := svc.UpdatePrice(ctx, "iat", fptr(249), "admin@x.com", "1.2.3.4")
	require.NoError(t, err)
	_, err = svc.UpdatePrice(ctx, "iat", fptr(299), "admin@x.com", "1.2.3.4")
	require.NoError(t, err)

	require.Len(t, store.history, 2)
	// Each record's old price matches the previous record's new price.
	assert.Equal(t, store.history[0].NewPrice, store.history[1].OldPrice)
}

func TestGetHistory(t *testing.T) {
	svc, _ := newTestService(iat())
	ctx := context.Background()

	prices := []float64{250, 300, 350, 400}
	for _, p := range prices {
		_, err := svc.UpdatePrice(ctx, "iat", fptr(p), "admin@x.com", "1.2.3.4")
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(ctx, "iat", 50)
	require.NoError(t, err)
	require.Len(t, history, 4)

	// Newest first.
	assert.Equal(t, 400, history[0].NewPrice)
	assert.Equal(t, 250, history[3].NewPrice)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].ChangedAt.After(history[i-1].ChangedAt))
	}

	// Bounded by limit.
	history, err = svc.GetHistory(ctx, "iat", 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestGetHistory_CapsOversizedLimit(t *testing.T) {
	svc, store := newTestService(iat())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		store.history = append(store.history, models.PriceHistory{
			ProductCode: "iat",
			OldPrice:    199 + i,
			NewPrice:    200 + i,
			ChangedBy:   "admin@x.com",
			ChangedAt:   time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
	}

	history, err := svc.GetHistory(ctx, "iat", 1000)
	require.NoError(t, err)
	assert.Len(t, history, repository.MaxHistoryLimit)
	assert.Equal(t, 259, history[0].NewPrice)

	// Zero and negative limits also fall back to the cap.
	history, err = svc.GetHistory(ctx, "iat", 0)
	require.NoError(t, err)
	assert.Len(t, history, repository.MaxHistoryLimit)

	history, err = svc.GetHistory(ctx, "iat", -5)
	require.NoError(t, err)
	assert.Len(t, history, repository.MaxHistoryLimit)
}

func TestGetHistory_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(iat())
	_, err := svc.GetHistory(context.Background(), "unknown-id", 50)
	assert.ErrorIs(t, err, utils.ErrTestSeriesNotFound)
}

func TestListActive_SortedAndFiltered(t *testing.T) {
	inactive := models.TestSeries{Code: "old", Name: "AAA Retired Series", Price: 99, IsActive: false}
	svc, _ := newTestService(
		models.TestSeries{Code: "neet", Name: "NEET Test Series", Price: 499, IsActive: true},
		iat(),
		inactive,
	)

	list, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "iat", list[0].Code)
	assert.Equal(t, "neet", list[1].Code)
}

func TestUpdatePrice_ConflictWhenPriceMovedUnderneath(t *testing.T) {
	svc, store := newTestService(iat())

	// Simulate a concurrent writer between read and write by mutating the
	// store after the service has read the entry. The conditional write in
	// UpdatePrice must reject the stale expectation.
	store.series["iat"].Price = 500

	_, err := svc.UpdatePrice(context.Background(), "iat", fptr(249), "admin@x.com", "1.2.3.4")
	// The service read 500 as current, so 249 simply succeeds; to exercise
	// the CAS we call the store directly with a stale expectation.
	require.NoError(t, err)

	_, err = store.UpdatePrice(context.Background(), "iat", 500, 600, &models.PriceHistory{ProductCode: "iat"})
	assert.ErrorIs(t, err, utils.ErrPriceConflict)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// memStore backs the catalog service with in-memory maps so handler tests
// exercise the full service path without a database.
type memStore struct {
	series  map[string]*models.TestSeries
	history map[string][]models.PriceHistory
}

func newMemStore() *memStore {
	return &memStore{
		series:  make(map[string]*models.TestSeries),
		history: make(map[string][]models.PriceHistory),
	}
}

func (m *memStore) add(ts models.TestSeries) {
	m.series[ts.Code] = &ts
}

func (m *memStore) ListActive(ctx context.Context) ([]models.TestSeries, error) {
	var out []models.TestSeries
	for _, ts := range m.series {
		if ts.IsActive {
			out = append(out, *ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetByCode(ctx context.Context, code string) (*models.TestSeries, error) {
	ts, ok := m.series[code]
	if !ok || !ts.IsActive {
		return nil, utils.ErrTestSeriesNotFound
	}
	cp := *ts
	return &cp, nil
}

func (m *memStore) UpdatePrice(ctx context.Context, code string, expectedOld, newPrice int, rec *models.PriceHistory) (*models.TestSeries, error) {
	ts, ok := m.series[code]
	if !ok || !ts.IsActive {
		return nil, utils.ErrTestSeriesNotFound
	}
	if ts.Price != expectedOld {
		return nil, utils.ErrPriceConflict
	}
	ts.Price = newPrice
	ts.UpdatedAt = time.Now().UTC()
	m.history[code] = append([]models.PriceHistory{*rec}, m.history[code]...)
	cp := *ts
	return &cp, nil
}

func (m *memStore) ListByCode(ctx context.Context, code string, limit int) ([]models.PriceHistory, error) {
	recs := m.history[code]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func setupRouter(store *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	catalogService := service.NewCatalogService(store, store)
	h := NewCatalogHandler(catalogService)

	r := gin.New()
	r.GET("/v1/test-series", h.List)
	r.GET("/v1/test-series/:id", h.Get)
	r.PATCH("/v1/test-series/:id/price", func(c *gin.Context) {
		c.Set("admin_email", "admin@x.com")
		h.UpdatePrice(c)
	})
	r.GET("/v1/test-series/:id/price-history", h.PriceHistory)
	return r
}

func seededStore() *memStore {
	store := newMemStore()
	store.add(models.TestSeries{ID: 1, Code: "iat", Name: "IAT Mock Series", Price: 199, IsActive: true})
	store.add(models.TestSeries{ID: 2, Code: "nest", Name: "NEST Mock Series", Price: 299, IsActive: true})
	store.add(models.TestSeries{ID: 3, Code: "legacy", Name: "Legacy Series", Price: 99, IsActive: false})
	return store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestListTestSeries(t *testing.T) {
	r := setupRouter(seededStore())

	w, body := doJSON(t, r, http.MethodGet, "/v1/test-series", nil)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["count"])

	list := body["testSeries"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "iat", first["productId"])
}

func TestGetTestSeries(t *testing.T) {
	r := setupRouter(seededStore())

	w, body := doJSON(t, r, http.MethodGet, "/v1/test-series/iat", nil)
	assert.Equal(t, 200, w.Code)
	ts := body["testSeries"].(map[string]any)
	assert.Equal(t, "iat", ts["productId"])
	assert.EqualValues(t, 199, ts["price"])
}

func TestGetTestSeries_NotFound(t *testing.T) {
	r := setupRouter(seededStore())

	for _, id := range []string{"unknown-id", "legacy"} {
		w, body := doJSON(t, r, http.MethodGet, "/v1/test-series/"+id, nil)
		assert.Equal(t, 404, w.Code, id)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "test series not found", body["message"])
	}
}

func TestUpdatePrice_Success(t *testing.T) {
	store := seededStore()
	r := setupRouter(store)

	w, body := doJSON(t, r, http.MethodPatch, "/v1/test-series/iat/price", gin.H{"price": 249})

	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Price updated successfully", body["message"])

	ts := body["testSeries"].(map[string]any)
	assert.Equal(t, "iat", ts["productId"])
	assert.EqualValues(t, 199, ts["oldPrice"])
	assert.EqualValues(t, 249, ts["newPrice"])

	recs := store.history["iat"]
	require.Len(t, recs, 1)
	assert.Equal(t, "Price updated from 199 to 249", recs[0].Reason)
	assert.Equal(t, "admin@x.com", recs[0].ChangedBy)
}

func TestUpdatePrice_Failures(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantMsg  string
	}{
		{"missing price", "/v1/test-series/iat/price", gin.H{}, 400, "price required"},
		{"string price", "/v1/test-series/iat/price", gin.H{"price": "abc"}, 400, "not a number"},
		{"too high", "/v1/test-series/iat/price", gin.H{"price": 100000}, 400, "out of range"},
		{"too low", "/v1/test-series/iat/price", gin.H{"price": 0}, 400, "out of range"},
		{"fractional", "/v1/test-series/iat/price", gin.H{"price": 49.5}, 400, "must be whole number"},
		{"unchanged", "/v1/test-series/iat/price", gin.H{"price": 199}, 400, "price unchanged"},
		{"unknown product", "/v1/test-series/unknown-id/price", gin.H{"price": 100}, 404, "test series not found"},
		{"inactive product", "/v1/test-series/legacy/price", gin.H{"price": 100}, 404, "test series not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			r := setupRouter(store)

			w, body := doJSON(t, r, http.MethodPatch, tt.path, tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Empty(t, store.history["iat"], "no audit record on failure")
		})
	}
}

func TestPriceHistory(t *testing.T) {
	store := seededStore()
	r := setupRouter(store)

	for _, price := range []int{249, 299, 349} {
		w, _ := doJSON(t, r, http.MethodPatch, "/v1/test-series/iat/price", gin.H{"price": price})
		require.Equal(t, 200, w.Code)
	}

	w, body := doJSON(t, r, http.MethodGet, "/v1/test-series/iat/price-history", nil)
	assert.Equal(t, 200, w.Code)
	assert.EqualValues(t, 3, body["count"])

	recs := body["history"].([]any)
	require.Len(t, recs, 3)
	newest := recs[0].(map[string]any)
	assert.EqualValues(t, 299, newest["oldPrice"])
	assert.EqualValues(t, 349, newest["newPrice"])
}

func TestPriceHistory_UnknownProduct(t *testing.T) {
	r := setupRouter(seededStore())

	w, body := doJSON(t, r, http.MethodGet, "/v1/test-series/unknown-id/price-history", nil)
	assert.Equal(t, 404, w.Code)
	assert.Equal(t, false, body["success"])
}

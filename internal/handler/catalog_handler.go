package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// CatalogHandler handles test-series catalog and price-history endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List handles GET /v1/test-series
func (h *CatalogHandler) List(c *gin.Context) {
	list, err := h.catalogService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessList(c, "testSeries", len(list), list)
}

// Get handles GET /v1/test-series/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	ts, err := h.catalogService.GetByCode(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"testSeries": ts})
}

// UpdatePrice handles PATCH /v1/test-series/:id/price (admin only)
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	var req struct {
		Price *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// A non-numeric price (or garbage body) fails JSON binding; an
		// empty body falls through with Price nil and is rejected as
		// missing by the service.
		utils.Error(c, 400, utils.ErrPriceNotNumber.Error())
		return
	}

	actor := c.GetString("admin_email")
	result, err := h.catalogService.UpdatePrice(c.Request.Context(), c.Param("id"), req.Price, actor, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, 200, gin.H{
		"message":    "Price updated successfully",
		"testSeries": result,
	})
}

// PriceHistory handles GET /v1/test-series/:id/price-history (admin only)
func (h *CatalogHandler) PriceHistory(c *gin.Context) {
	limit := repository.MaxHistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.catalogService.GetHistory(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessList(c, "history", len(history), history)
}

// respondError maps service errors onto the response envelope. Anything
// outside the known taxonomy is a storage failure and reported as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case utils.IsInvalidArgument(err):
		utils.Error(c, 400, err.Error())
	case errors.Is(err, utils.ErrTestSeriesNotFound),
		errors.Is(err, utils.ErrStudentNotFound),
		errors.Is(err, utils.ErrTransactionNotFound),
		errors.Is(err, utils.ErrScheduledTestNotFound),
		errors.Is(err, utils.ErrExtractionNotFound):
		utils.Error(c, 404, err.Error())
	case errors.Is(err, utils.ErrPriceConflict):
		utils.Error(c, 409, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		utils.Error(c, 500, "storage failure: "+err.Error())
	}
}

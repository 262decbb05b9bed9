package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// ScheduleHandler handles scheduled-test endpoints.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// ListForSeries handles GET /v1/test-series/:id/schedule
// Public callers only see published slots; admins see everything.
func (h *ScheduleHandler) ListForSeries(c *gin.Context) {
	publishedOnly := c.GetString("admin_email") == ""

	tests, err := h.scheduleService.ListForSeries(c.Request.Context(), c.Param("id"), publishedOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessList(c, "scheduledTests", len(tests), tests)
}

// Create handles POST /v1/admin/test-series/:id/schedule
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduledTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "invalid request body: "+err.Error())
		return
	}

	st, err := h.scheduleService.Create(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, gin.H{"scheduledTest": st})
}

// Update handles PUT /v1/admin/scheduled-tests/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "invalid scheduled test id")
		return
	}

	var req service.UpdateScheduledTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "invalid request body: "+err.Error())
		return
	}

	st, err := h.scheduleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"scheduledTest": st})
}

// Delete handles DELETE /v1/admin/scheduled-tests/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "invalid scheduled test id")
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"message": "Scheduled test deleted"})
}

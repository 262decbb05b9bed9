package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// StudentHandler handles admin student-management endpoints.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// List handles GET /v1/admin/students
func (h *StudentHandler) List(c *gin.Context) {
	filter := &service.ListStudentsFilter{
		Search: c.Query("search"),
		Page:   1,
		Limit:  50,
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := c.Query("active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsActive = &b
		}
	}

	result, err := h.studentService.ListStudents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, 200, gin.H{
		"count":    result.TotalItems,
		"page":     result.Page,
		"pages":    result.TotalPages,
		"students": result.Students,
	})
}

// Get handles GET /v1/admin/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "invalid student id")
		return
	}

	detail, err := h.studentService.GetStudent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"student": detail})
}

// SetStatus handles PATCH /v1/admin/students/:id/status
func (h *StudentHandler) SetStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "invalid student id")
		return
	}

	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "isActive is required")
		return
	}

	if err := h.studentService.SetStudentStatus(c.Request.Context(), id, *req.IsActive); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"message": "Student status updated"})
}

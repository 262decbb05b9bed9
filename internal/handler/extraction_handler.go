package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// maxPDFSize caps question-PDF uploads at 20 MB.
const maxPDFSize = 20 << 20

// ExtractionHandler handles question-PDF uploads and extraction job status.
type ExtractionHandler struct {
	extractionService *service.ExtractionService
}

// NewExtractionHandler constructs an ExtractionHandler.
func NewExtractionHandler(extractionService *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Upload handles POST /v1/admin/test-series/:id/questions/upload
// Expects a multipart form with a "file" field containing the PDF.
func (h *ExtractionHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, 400, "file is required")
		return
	}
	if fileHeader.Size > maxPDFSize {
		utils.Error(c, 400, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, 400, "unable to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPDFSize))
	if err != nil || len(data) == 0 {
		utils.Error(c, 400, "unable to read file")
		return
	}

	job, err := h.extractionService.SubmitPDF(
		c.Request.Context(),
		c.Param("id"),
		fileHeader.Filename,
		data,
		c.GetString("admin_email"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 202, gin.H{"job": job})
}

// GetJob handles GET /v1/admin/extraction-jobs/:id
func (h *ExtractionHandler) GetJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "invalid job id")
		return
	}

	job, err := h.extractionService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, gin.H{"job": job})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-hub-service/internal/models"
	"catalog-hub-service/internal/repository"
	"catalog-hub-service/internal/services"
)

// maxReportedErrors caps how many record errors an import response carries;
// the full list is persisted with the run.
const maxReportedErrors = 10

// ImportHandler exposes the import endpoints
type ImportHandler struct {
	importService *services.ImportService
	runs          repository.ImportRunRepositoryInterface
	logger        *logrus.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *services.ImportService, runs repository.ImportRunRepositoryInterface, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		runs:          runs,
		logger:        logger,
	}
}

type importStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type importResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Stats   importStats `json:"stats"`
	Errors  []string    `json:"errors,omitempty"`
}

// ImportCategories triggers a category import run
// POST /api/v1/import/categories
func (h *ImportHandler) ImportCategories(c *gin.Context) {
	report := h.importService.SyncCategories(c.Request.Context(), c.GetString("userEmail"))
	h.respond(c, report)
}

// ImportProducts triggers a product import run
// POST /api/v1/import/products
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	report := h.importService.SyncProducts(c.Request.Context(), c.GetString("userEmail"))
	h.respond(c, report)
}

func (h *ImportHandler) respond(c *gin.Context, report *models.ImportReport) {
	resp := importResponse{
		Success: report.Success,
		Message: report.Message,
		Stats: importStats{
			Created: report.CreatedCount,
			Updated: report.UpdatedCount,
			Failed:  report.FailedCount,
		},
		Errors: report.Errors,
	}
	// Product runs can rack up one error per record, so only their list is
	// capped. Category runs always report every error.
	if report.Kind == models.ImportKindProducts && len(resp.Errors) > maxReportedErrors {
		resp.Errors = resp.Errors[:maxReportedErrors]
	}

	status := http.StatusOK
	if !report.Success && report.Attempted() == 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

// ListRuns returns past import runs, newest first
// GET /api/v1/import/runs
func (h *ImportHandler) ListRuns(c *gin.Context) {
	opts := listOptionsFromQuery(c)

	kind := models.ImportKind(c.Query("kind"))
	if kind != "" && kind != models.ImportKindCategories && kind != models.ImportKindProducts {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be CATEGORIES or PRODUCTS"})
		return
	}

	runs, total, err := h.runs.List(c.Request.Context(), kind, opts)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list import runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list import runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":     runs,
		"total":    total,
		"page":     opts.Page,
		"pageSize": opts.PageSize,
	})
}

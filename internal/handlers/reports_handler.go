package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-hub-service/internal/repository"
)

// ReportsHandler exposes catalog reporting endpoints
type ReportsHandler struct {
	reports repository.ReportRepositoryInterface
	logger  *logrus.Logger
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(reports repository.ReportRepositoryInterface, logger *logrus.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: logger}
}

// Dashboard returns aggregate catalog figures
// GET /api/v1/reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	report, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build dashboard report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export returns the full catalog as a single JSON document
// GET /api/v1/reports/export
func (h *ReportsHandler) Export(c *gin.Context) {
	export, err := h.reports.Export(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build catalog export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build catalog export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="catalog-export.json"`)
	c.JSON(http.StatusOK, export)
}

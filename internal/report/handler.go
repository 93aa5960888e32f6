package report

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/notify"
	"energyplus/onboarding-portal/internal/onboarding"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves report downloads.
type Handler struct {
	generator *Generator
	exporter  *ExcelExporter
	manager   *onboarding.Manager
	logger    *zap.Logger
}

func NewHandler(generator *Generator, exporter *ExcelExporter, manager *onboarding.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		generator: generator,
		exporter:  exporter,
		manager:   manager,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/onboarding.pdf", h.downloadPDF)
		reports.GET("/kpis/:clientId/export", h.downloadKPIWorkbook)
	}
}

func (h *Handler) downloadPDF(c *gin.Context) {
	rec := h.manager.Snapshot()
	pdf, err := h.generator.Generate(c.Request.Context(), rec)
	if err != nil {
		h.logger.Error("Failed to generate report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	company, _ := rec.OfferAndEconomics["companyName"].(string)
	name := notify.ReportFileName(company)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) downloadKPIWorkbook(c *gin.Context) {
	clientID := c.Param("clientId")
	data, err := h.exporter.Export(clientID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clientID+"-kpis.xlsx"))
	c.Data(http.StatusOK, xlsxContentType, data)
}

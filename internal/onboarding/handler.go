package onboarding

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ob := rg.Group("/onboarding")
	{
		ob.GET("", h.GetRecord)
		ob.GET("/progress", h.GetProgress)
		ob.GET("/sections/:name", h.GetSection)
		ob.PUT("/sections/:name", h.UpdateSection)
		ob.GET("/export", h.Export)
		ob.POST("/import", h.Import)
		ob.POST("/reset", h.Reset)
	}
}

func (h *Handler) GetRecord(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Snapshot())
}

func (h *Handler) GetProgress(c *gin.Context) {
	rec := h.manager.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"currentStep":    rec.CurrentStep,
		"completedSteps": rec.CompletedSteps,
		"percentage":     h.manager.CompletionPercentage(),
	})
}

func (h *Handler) GetSection(c *gin.Context) {
	section, err := h.manager.GetSection(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *Handler) UpdateSection(c *gin.Context) {
	var patch Section
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section payload"})
		return
	}

	if err := h.manager.UpdateSection(c.Param("name"), patch); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) Export(c *gin.Context) {
	data, filename, err := h.manager.ExportJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

func (h *Handler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if err := h.manager.ImportJSON(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}

func (h *Handler) Reset(c *gin.Context) {
	h.manager.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

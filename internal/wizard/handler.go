package wizard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	controller *Controller
}

func NewHandler(controller *Controller) *Handler {
	return &Handler{controller: controller}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wiz := rg.Group("/wizard")
	{
		wiz.GET("/state", h.GetState)
		wiz.GET("/steps", h.GetSteps)
		wiz.POST("/advance", h.Advance)
		wiz.POST("/back", h.Back)
		wiz.POST("/autosave", h.AutoSave)
	}
}

func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.State())
}

func (h *Handler) GetSteps(c *gin.Context) {
	c.JSON(http.StatusOK, Steps())
}

func (h *Handler) Advance(c *gin.Context) {
	var snap Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot payload"})
		return
	}

	result, err := h.controller.Advance(c.Request.Context(), snap)
	if err != nil {
		if errors.Is(err, ErrCompletionInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !result.Validation.Valid {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Back(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"step": h.controller.Retreat()})
}

func (h *Handler) AutoSave(c *gin.Context) {
	var snap Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot payload"})
		return
	}

	h.controller.FieldChanged(snap)
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

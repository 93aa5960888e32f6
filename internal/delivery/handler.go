package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	del := rg.Group("/delivery")
	{
		del.GET("/clients", h.Clients)
		del.POST("/updates", h.RecordUpdate)
		del.GET("/:clientId/:month/:week", h.GetWeek)
		del.GET("/:clientId/:month/:week/areas/:areaId", h.ListUpdates)
	}
}

func (h *Handler) Clients(c *gin.Context) {
	clients := h.tracker.Clients()
	if clients == nil {
		clients = []ClientInfo{}
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) RecordUpdate(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}

	update, err := h.tracker.RecordUpdate(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, update)
}

func (h *Handler) GetWeek(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}
	c.JSON(http.StatusOK, h.tracker.Week(c.Param("clientId"), c.Param("month"), week))
}

func (h *Handler) ListUpdates(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}
	areaID, err := strconv.Atoi(c.Param("areaId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid area"})
		return
	}

	updates, err := h.tracker.ListUpdates(c.Param("clientId"), c.Param("month"), week, areaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updates)
}

package kpi

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
	kpis := rg.Group("/kpis")
	{
		kpis.GET("/clients", h.Clients)
		kpis.GET("/:clientId", h.GetProfile)
		kpis.POST("/:clientId/baseline", h.InitializeBaseline)
		kpis.PUT("/:clientId/weekly/:month/:week", h.RecordWeekly)
		kpis.GET("/:clientId/weekly/:month/:week", h.GetWeekly)
		kpis.GET("/:clientId/history", h.History)
		kpis.GET("/:clientId/comparison/:month/:week", h.Comparison)
	}
}

func (h *Handler) Clients(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Clients())
}

func (h *Handler) GetProfile(c *gin.Context) {
	p := h.tracker.Profile(c.Param("clientId"))
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client has no KPI profile"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) InitializeBaseline(c *gin.Context) {
	var metrics map[string]string
	if err := c.ShouldBindJSON(&metrics); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metrics payload"})
		return
	}
	c.JSON(http.StatusOK, h.tracker.InitializeBaseline(c.Param("clientId"), metrics))
}

func (h *Handler) RecordWeekly(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}

	var metrics map[string]string
	if err := c.ShouldBindJSON(&metrics); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metrics payload"})
		return
	}

	p, err := h.tracker.RecordWeekly(c.Param("clientId"), c.Param("month"), week, metrics)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetWeekly(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}

	snap, ok := h.tracker.GetWeekly(c.Param("clientId"), c.Param("month"), week)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no metrics for this period"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) History(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.History(c.Param("clientId")))
}

func (h *Handler) Comparison(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}
	c.JSON(http.StatusOK, h.tracker.Comparison(c.Param("clientId"), c.Param("month"), week))
}

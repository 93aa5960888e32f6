package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"energyplus/onboarding-portal/internal/onboarding"
)

type Handler struct {
	service *Service
	manager *onboarding.Manager
}

func NewHandler(service *Service, manager *onboarding.Manager) *Handler {
	return &Handler{
		service: service,
		manager: manager,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	dash := rg.Group("/dashboard")
	{
		dash.GET("/summary", h.GetSummary)
		dash.GET("/areas", h.GetAreas)
		dash.GET("/simulation", h.GetSimulation)
	}
}

// GetSummary returns the dashboard for the requested period, defaulting
// to the current month and week.
func (h *Handler) GetSummary(c *gin.Context) {
	now := time.Now()

	month := c.DefaultQuery("month", now.Format("2006-01"))
	week, err := strconv.Atoi(c.DefaultQuery("week", strconv.Itoa((now.Day()-1)/7+1)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}

	c.JSON(http.StatusOK, h.service.Summary(h.manager.Snapshot(), month, week))
}

func (h *Handler) GetAreas(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Areas())
}

func (h *Handler) GetSimulation(c *gin.Context) {
	events := SimulationEvents()
	out := make([]gin.H, 0, len(events))
	for _, ev := range events {
		out = append(out, gin.H{
			"atSeconds": int(ev.At.Seconds()),
			"areaId":    ev.AreaID,
			"progress":  ev.Progress,
			"status":    ev.Status,
		})
	}
	c.JSON(http.StatusOK, out)
}

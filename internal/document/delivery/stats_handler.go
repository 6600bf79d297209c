package delivery

import (
	"net/http"
	"strconv"

	"readerdash/internal/document/usecase"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsUsecase usecase.StatsUsecase
}

func NewStatsHandler(statsUsecase usecase.StatsUsecase) *StatsHandler {
	return &StatsHandler{
		statsUsecase: statsUsecase,
	}
}

func (h *StatsHandler) GetOverview(c *gin.Context) {
	overview, err := h.statsUsecase.Overview()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *StatsHandler) GetDailyActivity(c *gin.Context) {
	days := queryInt(c, "days", 30)
	activity, err := h.statsUsecase.DailyActivity(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "activity": activity})
}

func (h *StatsHandler) GetStaleDocuments(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	docs, err := h.statsUsecase.StaleDocuments(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

func (h *StatsHandler) GetSourceEngagement(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	sources, err := h.statsUsecase.SourceEngagement(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

func (h *StatsHandler) GetReadingVelocity(c *gin.Context) {
	days := queryInt(c, "days", 7)
	velocity, err := h.statsUsecase.ReadingVelocity(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "velocity": velocity})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

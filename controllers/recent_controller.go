package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"Foresight/cache"
	"Foresight/models"
	httpctx "Foresight/utils/httpctx"

	"github.com/gin-gonic/gin"
)

const (
	recentEventsMax = 10
	recentEventsTTL = 30 * 24 * time.Hour
)

func recentEventsKey(wallet string) string {
	return "recent_events:" + wallet
}

// recordRecentView pushes an event onto the viewer's recently-viewed list.
// Best effort: a cache failure never affects the detail response.
func (server *Server) recordRecentView(ctx context.Context, wallet string, eventID uint) {
	id := strconv.FormatUint(uint64(eventID), 10)
	_ = cache.PushRecent(ctx, recentEventsKey(wallet), []byte(id), recentEventsMax, recentEventsTTL)
}

// GetRecentlyViewed godoc
// @Summary      Recently viewed predictions
// @Description  The authenticated wallet's last viewed predictions, newest first; entries whose prediction was deleted are skipped
// @Tags         users
// @Produce      json
// @Success      200  {object}  RecentEventsResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/recent [get]
// @Security     BearerAuth
func (server *Server) GetRecentlyViewed(c *gin.Context) {
	errList = map[string]string{}

	wallet, ok := httpctx.CurrentWallet(c)
	if !ok {
		errList["Unauthorized"] = "Connect a wallet to continue"
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": http.StatusUnauthorized,
			"error":  errList,
		})
		return
	}

	ids, err := cache.GetRecent(c.Request.Context(), recentEventsKey(wallet), recentEventsMax)
	if err != nil {
		// An unreachable cache reads as an empty history, not an error.
		c.JSON(http.StatusOK, gin.H{
			"status":   http.StatusOK,
			"response": []RecentEventDTO{},
		})
		return
	}

	recent := make([]RecentEventDTO, 0, len(ids))
	for _, raw := range ids {
		pid, err := parsePredictionID(raw)
		if err != nil {
			continue
		}
		prediction := models.Prediction{}
		found, err := prediction.FindPredictionByID(server.DB, pid)
		if err != nil {
			continue
		}
		recent = append(recent, RecentEventDTO{
			ID:       found.ID,
			Title:    found.Title,
			Category: found.Category,
			Status:   found.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": recent,
	})
}

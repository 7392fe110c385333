package controllers

import (
	"errors"
	"net/http"

	"Foresight/followsync"
	"Foresight/models"
	"Foresight/utils"
	httpctx "Foresight/utils/httpctx"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetFollowStatus godoc
// @Summary      Get follow status
// @Description  Point-in-time (following, followersCount) for the optional viewer; anonymous viewers always read following=false
// @Tags         follows
// @Produce      json
// @Param        id      path   int     true   "Prediction ID"
// @Param        viewer  query  string  false  "Viewer wallet address"
// @Success      200  {object}  FollowStatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/follow [get]
func (server *Server) GetFollowStatus(c *gin.Context) {
	errList = map[string]string{}

	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		errList["Invalid_request"] = "Invalid Request"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	viewer, _ := httpctx.CurrentWallet(c)
	status, err := server.Follows.FollowStatus(c.Request.Context(), pid, viewer)
	if err != nil {
		// Read path degrades instead of failing; the synchronizer
		// on the consumer side owns retrying.
		utils.ErrorLogger.Printf("follow status for event %d: %v", pid, err)
		status = followsync.Status{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": status,
	})
}

// ToggleFollow godoc
// @Summary      Toggle follow
// @Description  Flip the authenticated wallet's follow state for a prediction (logical XOR)
// @Tags         follows
// @Produce      json
// @Param        id  path  int  true  "Prediction ID"
// @Success      200  {object}  FollowToggleResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/follow [post]
// @Security     BearerAuth
func (server *Server) ToggleFollow(c *gin.Context) {
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

	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		errList["Invalid_request"] = "Invalid Request"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	following, err := server.Follows.ToggleFollow(c.Request.Context(), pid, wallet)
	if err != nil {
		if errors.Is(err, followsync.ErrUnauthenticated) {
			errList["Unauthorized"] = "Connect a wallet to continue"
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": http.StatusUnauthorized,
				"error":  errList,
			})
			return
		}
		// No automatic retry on write failures; prior state is unchanged.
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error toggling follow",
		})
		return
	}

	count, err := models.CountEventFollows(server.DB, pid)
	if err != nil {
		count = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"following":      following,
			"followersCount": count,
		},
	})
}

// GetFollowers godoc
// @Summary      List recent followers
// @Description  Follower count plus the latest follower wallets for a prediction
// @Tags         follows
// @Produce      json
// @Param        id  path  int  true  "Prediction ID"
// @Success      200  {object}  FollowersResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/followers [get]
func (server *Server) GetFollowers(c *gin.Context) {
	errList = map[string]string{}

	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		errList["Invalid_request"] = "Invalid Request"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	count, err := models.CountEventFollows(server.DB, pid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error counting followers",
		})
		return
	}
	recent, err := models.RecentEventFollows(server.DB, pid, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error fetching followers",
		})
		return
	}

	wallets := make([]string, len(recent))
	for i, f := range recent {
		wallets[i] = f.UserID
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"response": gin.H{
			"followersCount": count,
			"recent":         wallets,
		},
	})
}

// ensurePredictionExists writes the 404/500 response itself and returns a
// non-nil error when the handler should stop.
func (server *Server) ensurePredictionExists(c *gin.Context, pid uint) error {
	var prediction models.Prediction
	err := server.DB.Select("id").First(&prediction, pid).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  gin.H{"No_prediction": "No prediction found"},
		})
		return err
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"status": http.StatusInternalServerError,
		"error":  "Error fetching prediction",
	})
	return err
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Foresight/cache"
	"Foresight/models"
	"Foresight/utils"
	"Foresight/utils/formaterror"
	httpctx "Foresight/utils/httpctx"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const predictionListCacheTTL = 30 * time.Second

// GetPredictions godoc
// @Summary      List predictions
// @Description  List prediction events with optional category/status filters; anonymous access allowed
// @Tags         predictions
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Param        status    query  string  false  "Status filter (active|completed|cancelled)"
// @Param        limit     query  int     false  "Max results"
// @Success      200  {object}  PredictionListResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /predictions [get]
func (server *Server) GetPredictions(c *gin.Context) {
	category := c.Query("category")
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	cacheKey := fmt.Sprintf("predictions:%s:%s:%d", category, status, limit)
	if cached, err := cache.Get(c.Request.Context(), cacheKey); err == nil && cached != "" {
		var predictions []models.Prediction
		if json.Unmarshal([]byte(cached), &predictions) == nil {
			c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": predictions})
			return
		}
	}

	prediction := models.Prediction{}
	predictions, err := prediction.FindAllPredictions(server.DB, category, status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error fetching predictions",
		})
		return
	}

	if payload, err := json.Marshal(predictions); err == nil {
		_ = cache.Set(c.Request.Context(), cacheKey, payload, predictionListCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "response": predictions})
}

// CreatePrediction godoc
// @Summary      Create a prediction
// @Description  Create a prediction event; duplicate titles are rejected with the colliding records enumerated
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        prediction  body      PredictionCreateRequest  true  "Prediction payload"
// @Success      201  {object}  PredictionResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  DuplicateTitleResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /predictions [post]
// @Security     BearerAuth
func (server *Server) CreatePrediction(c *gin.Context) {
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

	var req PredictionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	prediction := models.Prediction{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Deadline:     req.Deadline,
		MinStake:     req.MinStake,
		Criteria:     req.Criteria,
		ReferenceURL: req.ReferenceURL,
		ImageURL:     req.ImageURL,
	}
	prediction.Prepare()
	errorMessages := prediction.Validate()
	if len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	duplicates, err := prediction.FindDuplicatesByTitle(server.DB, prediction.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error checking existing predictions",
		})
		return
	}
	if len(duplicates) > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"status":          http.StatusConflict,
			"error":           gin.H{"Taken_title": "A prediction with this title already exists"},
			"duplicateEvents": duplicateEventDTOs(duplicates),
		})
		return
	}

	created, err := prediction.SavePrediction(server.DB)
	if err != nil {
		formattedError := formaterror.FormatError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  formattedError,
		})
		return
	}

	utils.InfoLogger.Printf("prediction %d created by %s", created.ID, wallet)
	invalidatePredictionListCache()

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": created,
	})
}

// GetPrediction godoc
// @Summary      Get a prediction
// @Description  Get one prediction with derived betting statistics and time info
// @Tags         predictions
// @Produce      json
// @Param        id  path  int  true  "Prediction ID"
// @Success      200  {object}  PredictionDetailResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id} [get]
func (server *Server) GetPrediction(c *gin.Context) {
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

	prediction := models.Prediction{}
	found, err := prediction.FindPredictionByID(server.DB, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errList["No_prediction"] = "No prediction found"
			c.JSON(http.StatusNotFound, gin.H{
				"status": http.StatusNotFound,
				"error":  errList,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error fetching prediction",
		})
		return
	}

	stats, err := models.GetPredictionStats(server.DB, found.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error computing statistics",
		})
		return
	}

	if wallet, ok := httpctx.CurrentWallet(c); ok {
		server.recordRecentView(c.Request.Context(), wallet, found.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": predictionDetailDTO(found, stats),
	})
}

// UpdatePredictionStatus godoc
// @Summary      Update prediction status
// @Description  Move a prediction between active/completed/cancelled
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        id      path  int                      true  "Prediction ID"
// @Param        status  body  StatusUpdateRequest  true  "New status"
// @Success      200  {object}  SimpleMessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/status [patch]
// @Security     BearerAuth
func (server *Server) UpdatePredictionStatus(c *gin.Context) {
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

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	prediction := models.Prediction{}
	if _, err := prediction.FindPredictionByID(server.DB, pid); err != nil {
		errList["No_prediction"] = "No prediction found"
		c.JSON(http.StatusNotFound, gin.H{
			"status": http.StatusNotFound,
			"error":  errList,
		})
		return
	}

	if err := prediction.UpdateStatus(server.DB, req.Status); err != nil {
		errList["Invalid_status"] = "Status must be active, completed or cancelled"
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  errList,
		})
		return
	}
	invalidatePredictionListCache()

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": "Prediction status updated",
	})
}

func parsePredictionID(raw string) (uint, error) {
	pid, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(pid), nil
}

func invalidatePredictionListCache() {
	_ = cache.DeleteByPrefix(context.Background(), "predictions:")
}

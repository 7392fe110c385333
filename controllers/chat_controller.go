package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"Foresight/chatstream"
	"Foresight/utils/formaterror"
	httpctx "Foresight/utils/httpctx"

	"github.com/gin-gonic/gin"
)

// PostChatMessage godoc
// @Summary      Post a chat message
// @Description  Append a message to a prediction's room; the row is durably stored before the call returns
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Prediction ID"
// @Param        message  body  ChatPostRequest  true  "Message payload"
// @Success      201  {object}  ChatMessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /predictions/{id}/chat [post]
// @Security     BearerAuth
func (server *Server) PostChatMessage(c *gin.Context) {
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

	var req ChatPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errList["Invalid_body"] = "Invalid request body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	message, err := server.Relay.Post(c.Request.Context(), pid, wallet, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chatstream.ErrUnauthenticated):
			errList["Unauthorized"] = "Connect a wallet to continue"
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": http.StatusUnauthorized,
				"error":  errList,
			})
		case errors.Is(err, chatstream.ErrInvalidInput):
			errList["Required_content"] = "Content is required"
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"status": http.StatusUnprocessableEntity,
				"error":  errList,
			})
		default:
			formattedError := formaterror.FormatError(err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": http.StatusInternalServerError,
				"error":  formattedError,
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   http.StatusCreated,
		"response": message,
	})
}

// GetChatMessages godoc
// @Summary      Get room snapshot
// @Description  Messages for a prediction's room in ascending (created_at, id) order; late joiners fetch this before consuming the stream
// @Tags         chat
// @Produce      json
// @Param        id     path   int  true   "Prediction ID"
// @Param        limit  query  int  false  "Max messages"
// @Success      200  {object}  ChatSnapshotResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/chat [get]
func (server *Server) GetChatMessages(c *gin.Context) {
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

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	messages, err := server.Relay.Snapshot(c.Request.Context(), pid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error fetching messages",
		})
		return
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   http.StatusOK,
		"response": messages,
	})
}

package controllers

import (
	"io"
	"net/http"
	"time"

	"Foresight/feed"
	"Foresight/models"
	httpctx "Foresight/utils/httpctx"

	"github.com/gin-gonic/gin"
)

const streamHeartbeat = 15 * time.Second

// StreamChatMessages godoc
// @Summary      Stream room messages
// @Description  Server-sent events: the first "messages" event is the room snapshot, later ones are incremental batches that may repeat ids; consumers merge by id and re-sort
// @Tags         chat
// @Produce      text/event-stream
// @Param        id  path  int  true  "Prediction ID"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/chat/stream [get]
func (server *Server) StreamChatMessages(c *gin.Context) {
	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  gin.H{"Invalid_request": "Invalid Request"},
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	// Subscribe before the snapshot read so nothing committed in between is
	// missed; the overlap at worst repeats ids, which consumers merge away.
	sub := server.Relay.Subscribe(pid)
	defer sub.Unsubscribe()

	snapshot, err := server.Relay.Snapshot(c.Request.Context(), pid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error fetching messages",
		})
		return
	}

	setStreamHeaders(c)
	c.SSEvent("messages", snapshot)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case change, ok := <-sub.C:
			if !ok {
				return false
			}
			batch := drainChatBatch(sub, change)
			if len(batch) > 0 {
				c.SSEvent("messages", batch)
			}
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-clientGone:
			return false
		}
	})
}

// drainChatBatch folds the received change plus any already-queued ones into
// a single batch, so a burst becomes one SSE frame.
func drainChatBatch(sub *feed.Subscription, first feed.Change) []models.ChatMessage {
	batch := []models.ChatMessage{}
	appendRow := func(change feed.Change) {
		if change.Kind != feed.KindInsert {
			return
		}
		if msg, ok := change.Row.(models.ChatMessage); ok {
			batch = append(batch, msg)
		}
	}
	appendRow(first)
	for {
		select {
		case change, ok := <-sub.C:
			if !ok {
				return batch
			}
			appendRow(change)
		default:
			return batch
		}
	}
}

// FollowChangeDTO is one follow mutation on the SSE feed.
type FollowChangeDTO struct {
	Kind    string `json:"kind"`
	EventID uint   `json:"event_id"`
	UserID  string `json:"user_id"`
	Self    bool   `json:"self"`
}

// StreamFollows godoc
// @Summary      Stream follow changes
// @Description  Server-sent events of follow inserts/deletes for one prediction; the first "status" event is the authoritative snapshot for the optional viewer
// @Tags         follows
// @Produce      text/event-stream
// @Param        id      path   int     true   "Prediction ID"
// @Param        viewer  query  string  false  "Viewer wallet address"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /predictions/{id}/follow/stream [get]
func (server *Server) StreamFollows(c *gin.Context) {
	pid, err := parsePredictionID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": http.StatusBadRequest,
			"error":  gin.H{"Invalid_request": "Invalid Request"},
		})
		return
	}
	if err := server.ensurePredictionExists(c, pid); err != nil {
		return
	}

	viewer, _ := httpctx.CurrentWallet(c)

	sub := server.Hub.Subscribe(feed.TableEventFollows, func(change feed.Change) bool {
		row, ok := change.Row.(models.EventFollow)
		return ok && row.EventID == pid
	})
	defer sub.Unsubscribe()

	status, err := server.Follows.FollowStatus(c.Request.Context(), pid, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": http.StatusInternalServerError,
			"error":  "Error fetching follow status",
		})
		return
	}

	setStreamHeaders(c)
	c.SSEvent("status", status)
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case change, ok := <-sub.C:
			if !ok {
				return false
			}
			row, ok := change.Row.(models.EventFollow)
			if !ok {
				return true
			}
			c.SSEvent("follow", FollowChangeDTO{
				Kind:    change.Kind,
				EventID: row.EventID,
				UserID:  row.UserID,
				Self:    viewer != "" && row.UserID == viewer,
			})
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-clientGone:
			return false
		}
	})
}

func setStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}

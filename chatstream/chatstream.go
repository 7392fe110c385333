// Package chatstream delivers append-only chat messages for one event room.
//
// Batches on the stream may repeat already-seen ids and carry no ordering
// guarantee between each other; consumers merge by id and re-sort by
// (created_at, id) after every batch. Delivery is at-least-once; the initial
// snapshot fetch is the source of truth for backfill.
package chatstream

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"Foresight/feed"
	"Foresight/models"

	"gorm.io/gorm"
)

var (
	ErrUnauthenticated = errors.New("a wallet identity is required to post")
	ErrInvalidInput    = errors.New("message content is required")
)

// Relay is the server side of the room: durable writes plus feed fan-out.
type Relay struct {
	DB  *gorm.DB
	Hub *feed.Hub
}

// Post validates, durably records and then announces a message. The row is
// committed before the call returns; the notification is best effort.
func (r *Relay) Post(ctx context.Context, eventID uint, authorID, content string) (*models.ChatMessage, error) {
	message := &models.ChatMessage{
		EventID: eventID,
		UserID:  authorID,
		Content: content,
	}
	message.Prepare()
	if message.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if message.Content == "" || message.EventID == 0 {
		return nil, ErrInvalidInput
	}

	saved, err := message.SaveChatMessage(r.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if r.Hub != nil {
		_ = r.Hub.Publish(feed.Change{Kind: feed.KindInsert, Table: feed.TableChatMessages, Row: *saved})
	}
	return saved, nil
}

// Snapshot returns the room's messages in presentation order. Late joiners
// fetch this before consuming the stream.
func (r *Relay) Snapshot(ctx context.Context, eventID uint) ([]models.ChatMessage, error) {
	message := models.ChatMessage{}
	return message.GetChatMessages(r.DB.WithContext(ctx), eventID, 0)
}

// Subscribe opens the incremental feed for one room.
func (r *Relay) Subscribe(eventID uint) *feed.Subscription {
	return r.Hub.Subscribe(feed.TableChatMessages, func(c feed.Change) bool {
		row, ok := c.Row.(models.ChatMessage)
		return ok && row.EventID == eventID
	})
}

// Merger owns the client-side merge invariant: set union keyed by id,
// re-sorted by (created_at, id) on read.
type Merger struct {
	mu   sync.Mutex
	byID map[string]models.ChatMessage
}

func NewMerger() *Merger {
	return &Merger{byID: make(map[string]models.ChatMessage)}
}

// Apply merges one batch. Duplicate ids collapse; the first observed copy of
// a message wins since messages are immutable.
func (m *Merger) Apply(batch []models.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range batch {
		if _, seen := m.byID[msg.ID]; !seen {
			m.byID[msg.ID] = msg
		}
	}
}

// Messages returns the merged view sorted by (created_at, id).
func (m *Merger) Messages() []models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatMessage, 0, len(m.byID))
	for _, msg := range m.byID {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return strings.Compare(out[i].ID, out[j].ID) < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *Merger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Source yields one run of the stream: a channel of batches that ends when
// the underlying connection drops.
type Source interface {
	Open(ctx context.Context) (<-chan []models.ChatMessage, error)
}

const reopenDelay = time.Second

// Consumer drives a Source into a Merger, transparently reopening dropped
// connections until the context is cancelled.
type Consumer struct {
	Source Source
	Merger *Merger
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		batches, err := c.Source.Open(ctx)
		if err == nil {
			for batch := range batches {
				c.Merger.Apply(batch)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reopenDelay):
		}
	}
}

package feed

import (
	"errors"
	"sync"

	"Foresight/utils"
)

// Change kinds. The union is closed: anything else is rejected at Publish.
const (
	KindInsert = "INSERT"
	KindUpdate = "UPDATE"
	KindDelete = "DELETE"
)

// Relations that may appear on the feed.
const (
	TablePredictions  = "predictions"
	TableEventFollows = "event_follows"
	TableChatMessages = "chat_messages"
)

// Change is one row-level mutation notification. Row holds the concrete model
// for the table (models.EventFollow, models.ChatMessage, models.Prediction);
// for deletes it carries the old row.
type Change struct {
	Kind  string      `json:"kind"`
	Table string      `json:"table"`
	Row   interface{} `json:"row"`
}

var validKinds = map[string]bool{KindInsert: true, KindUpdate: true, KindDelete: true}
var validTables = map[string]bool{TablePredictions: true, TableEventFollows: true, TableChatMessages: true}

// Subscription is one live change feed. Changes arrive on C until Unsubscribe
// is called, after which C is closed. Delivery is best effort: a subscriber
// that falls behind its buffer loses changes and is expected to recover from a
// snapshot re-fetch.
type Subscription struct {
	C chan Change

	hub    *Hub
	id     uint64
	table  string
	match  func(Change) bool
	once   sync.Once
	closed bool
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans row-level mutations out to per-subscriber channels.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

const subscriberBuffer = 64

// Subscribe opens a feed for one table. A nil match subscribes to every change
// on the table.
func (h *Hub) Subscribe(table string, match func(Change) bool) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		C:     make(chan Change, subscriberBuffer),
		hub:   h,
		id:    h.nextID,
		table: table,
		match: match,
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; ok {
		delete(h.subs, sub.id)
		sub.closed = true
		close(sub.C)
	}
}

// Publish validates the change against the closed union and delivers it to
// every matching subscriber without blocking the caller.
func (h *Hub) Publish(change Change) error {
	if !validKinds[change.Kind] {
		return errors.New("feed: unknown change kind " + change.Kind)
	}
	if !validTables[change.Table] {
		return errors.New("feed: unknown table " + change.Table)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.table != change.Table {
			continue
		}
		if sub.match != nil && !sub.match(change) {
			continue
		}
		select {
		case sub.C <- change:
		default:
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("feed: dropping change for slow subscriber on %s", change.Table)
			}
		}
	}
	return nil
}

// SubscriberCount reports the number of open subscriptions, for tests and
// shutdown checks.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

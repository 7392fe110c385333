package feed

import (
	"testing"
	"time"

	"Foresight/models"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TableEventFollows, nil)
	defer sub.Unsubscribe()

	change := Change{
		Kind:  KindInsert,
		Table: TableEventFollows,
		Row:   models.EventFollow{EventID: 7, UserID: "0xabc"},
	}
	err := hub.Publish(change)
	assert.NoError(t, err)

	select {
	case got := <-sub.C:
		assert.Equal(t, KindInsert, got.Kind)
		assert.Equal(t, TableEventFollows, got.Table)
	case <-time.After(time.Second):
		t.Fatal("expected a change on the subscription channel")
	}
}

func TestPublishRespectsMatchFilter(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TableEventFollows, func(c Change) bool {
		row, ok := c.Row.(models.EventFollow)
		return ok && row.EventID == 1
	})
	defer sub.Unsubscribe()

	_ = hub.Publish(Change{Kind: KindInsert, Table: TableEventFollows, Row: models.EventFollow{EventID: 2}})
	_ = hub.Publish(Change{Kind: KindInsert, Table: TableEventFollows, Row: models.EventFollow{EventID: 1}})

	got := <-sub.C
	row := got.Row.(models.EventFollow)
	assert.Equal(t, uint(1), row.EventID)

	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected extra change: %+v", extra)
	default:
	}
}

func TestPublishRejectsUnknownKindAndTable(t *testing.T) {
	hub := NewHub()

	err := hub.Publish(Change{Kind: "UPSERT", Table: TableEventFollows})
	assert.Error(t, err)

	err = hub.Publish(Change{Kind: KindInsert, Table: "users"})
	assert.Error(t, err)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TableChatMessages, nil)
	assert.Equal(t, 1, hub.SubscriberCount())

	sub.Unsubscribe()
	// A second call must be a no-op.
	sub.Unsubscribe()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-sub.C
	assert.False(t, open)
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(TableChatMessages, nil)
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = hub.Publish(Change{
				Kind:  KindInsert,
				Table: TableChatMessages,
				Row:   models.ChatMessage{EventID: 1, Content: "m"},
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a subscriber that is not draining")
	}
}

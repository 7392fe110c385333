package chatstream

import (
	"context"
	"testing"
	"time"

	"Foresight/feed"
	"Foresight/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newRelayTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.ChatMessage{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestPostStoresThenNotifies(t *testing.T) {
	hub := feed.NewHub()
	relay := &Relay{DB: newRelayTestDB(t), Hub: hub}
	sub := relay.Subscribe(3)
	defer sub.Unsubscribe()

	saved, err := relay.Post(context.Background(), 3, "0xAbC", "hello room")
	assert.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "0xabc", saved.UserID)

	// Durable before announced: the row is readable regardless of delivery.
	snapshot, err := relay.Snapshot(context.Background(), 3)
	assert.NoError(t, err)
	assert.Len(t, snapshot, 1)

	select {
	case change := <-sub.C:
		msg := change.Row.(models.ChatMessage)
		assert.Equal(t, saved.ID, msg.ID)
	case <-time.After(time.Second):
		t.Fatal("expected the posted message on the room feed")
	}
}

func TestPostRejectsAnonymousAuthor(t *testing.T) {
	relay := &Relay{DB: newRelayTestDB(t), Hub: feed.NewHub()}

	_, err := relay.Post(context.Background(), 3, "   ", "hello")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	snapshot, _ := relay.Snapshot(context.Background(), 3)
	assert.Empty(t, snapshot)
}

func TestPostRejectsEmptyContent(t *testing.T) {
	relay := &Relay{DB: newRelayTestDB(t), Hub: feed.NewHub()}

	_, err := relay.Post(context.Background(), 3, "0xabc", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubscribeFiltersByRoom(t *testing.T) {
	hub := feed.NewHub()
	relay := &Relay{DB: newRelayTestDB(t), Hub: hub}
	sub := relay.Subscribe(1)
	defer sub.Unsubscribe()

	_, err := relay.Post(context.Background(), 2, "0xabc", "other room")
	assert.NoError(t, err)
	_, err = relay.Post(context.Background(), 1, "0xabc", "this room")
	assert.NoError(t, err)

	change := <-sub.C
	msg := change.Row.(models.ChatMessage)
	assert.Equal(t, uint(1), msg.EventID)

	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected cross-room delivery: %+v", extra)
	default:
	}
}

func TestMergerCollapsesOverlappingBatches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m1 := models.ChatMessage{ID: "a", EventID: 1, Content: "first", CreatedAt: base}
	m2 := models.ChatMessage{ID: "b", EventID: 1, Content: "second", CreatedAt: base.Add(time.Second)}
	m3 := models.ChatMessage{ID: "c", EventID: 1, Content: "third", CreatedAt: base.Add(2 * time.Second)}

	merger := NewMerger()
	merger.Apply([]models.ChatMessage{m1, m2})
	merger.Apply([]models.ChatMessage{m2, m3})

	assert.Equal(t, 3, merger.Len())
	merged := merger.Messages()
	assert.Equal(t, []string{"a", "b", "c"}, []string{merged[0].ID, merged[1].ID, merged[2].ID})
}

func TestMergerBreaksTimestampTiesByID(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := models.ChatMessage{ID: "z", EventID: 1, Content: "tie z", CreatedAt: ts}
	earlier := models.ChatMessage{ID: "a", EventID: 1, Content: "tie a", CreatedAt: ts}

	merger := NewMerger()
	merger.Apply([]models.ChatMessage{later})
	merger.Apply([]models.ChatMessage{earlier})

	merged := merger.Messages()
	assert.Equal(t, "a", merged[0].ID)
	assert.Equal(t, "z", merged[1].ID)
}

func TestMergerKeepsFirstCopyOfDuplicateID(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	merger := NewMerger()
	merger.Apply([]models.ChatMessage{{ID: "a", Content: "original", CreatedAt: ts}})
	merger.Apply([]models.ChatMessage{{ID: "a", Content: "mutated copy", CreatedAt: ts}})

	merged := merger.Messages()
	assert.Len(t, merged, 1)
	assert.Equal(t, "original", merged[0].Content)
}

// scriptedSource yields one fixed run of batches per Open call.
type scriptedSource struct {
	runs [][][]models.ChatMessage
	open int
}

func (s *scriptedSource) Open(ctx context.Context) (<-chan []models.ChatMessage, error) {
	var run [][]models.ChatMessage
	if s.open < len(s.runs) {
		run = s.runs[s.open]
	}
	s.open++
	out := make(chan []models.ChatMessage, len(run))
	for _, batch := range run {
		out <- batch
	}
	close(out)
	return out, nil
}

func TestConsumerMergesAcrossReconnects(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m1 := models.ChatMessage{ID: "a", CreatedAt: ts}
	m2 := models.ChatMessage{ID: "b", CreatedAt: ts.Add(time.Second)}
	m3 := models.ChatMessage{ID: "c", CreatedAt: ts.Add(2 * time.Second)}

	source := &scriptedSource{runs: [][][]models.ChatMessage{
		{{m1, m2}},
		{{m2, m3}},
	}}
	consumer := &Consumer{Source: source, Merger: NewMerger()}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := consumer.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.GreaterOrEqual(t, source.open, 2)
	assert.Equal(t, 3, consumer.Merger.Len())
}

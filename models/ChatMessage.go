package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is an append-only message in a prediction event's room.
// Messages are immutable once created; the presentation order is
// (created_at, id) so ties resolve deterministically across consumers.
type ChatMessage struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	EventID   uint      `gorm:"not null;index:idx_chat_messages_event_created,priority:1" json:"event_id"`
	UserID    string    `gorm:"size:64;not null" json:"user_id"`
	Content   string    `gorm:"text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_chat_messages_event_created,priority:2" json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if strings.TrimSpace(m.ID) == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *ChatMessage) Prepare() {
	m.ID = ""
	m.UserID = strings.ToLower(strings.TrimSpace(m.UserID))
	m.Content = html.EscapeString(strings.TrimSpace(m.Content))
	m.CreatedAt = time.Now()
}

func (m *ChatMessage) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if m.UserID == "" {
		errorMessages["Unauthenticated"] = "A wallet identity is required to post"
	}
	if m.Content == "" {
		errorMessages["Required_content"] = "Content is required"
	}
	if m.EventID == 0 {
		errorMessages["Required_event"] = "Event is required"
	}
	return errorMessages
}

func (m *ChatMessage) SaveChatMessage(db *gorm.DB) (*ChatMessage, error) {
	if err := db.Create(&m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetChatMessages returns the room snapshot in ascending presentation order.
func (m *ChatMessage) GetChatMessages(db *gorm.DB, eventID uint, limit int) ([]ChatMessage, error) {
	messages := []ChatMessage{}
	query := db.Where("event_id = ?", eventID).Order("created_at asc, id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// GetChatMessagesSince returns messages created at or after the given time,
// used to backfill a reopened stream without replaying the whole room.
func (m *ChatMessage) GetChatMessagesSince(db *gorm.DB, eventID uint, since time.Time) ([]ChatMessage, error) {
	messages := []ChatMessage{}
	err := db.Where("event_id = ? AND created_at >= ?", eventID, since).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteEventChatMessages removes a room when its event is deleted.
func (m *ChatMessage) DeleteEventChatMessages(db *gorm.DB, eventID uint) (int64, error) {
	result := db.Where("event_id = ?", eventID).Delete(&ChatMessage{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

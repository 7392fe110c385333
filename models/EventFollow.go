package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFollow is a viewer's subscription-of-interest to a prediction event.
// UserID is a lowercased wallet address; at most one row exists per
// (event_id, user_id) pair.
type EventFollow struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	EventID   uint      `gorm:"not null;index;uniqueIndex:idx_event_follows_unique" json:"event_id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_event_follows_unique" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (f *EventFollow) Prepare() {
	f.ID = 0
	f.UserID = strings.ToLower(strings.TrimSpace(f.UserID))
}

// SaveEventFollow inserts the follow row, tolerating a concurrent duplicate.
// The returned bool reports whether a new row was actually created.
func (f *EventFollow) SaveEventFollow(db *gorm.DB) (bool, error) {
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteEventFollow removes the follow row for the pair; the returned bool
// reports whether a row existed.
func (f *EventFollow) DeleteEventFollow(db *gorm.DB) (bool, error) {
	result := db.Where("event_id = ? AND user_id = ?", f.EventID, f.UserID).
		Delete(&EventFollow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (f *EventFollow) IsFollowing(db *gorm.DB, eventID uint, userID string) (bool, error) {
	var count int64
	err := db.Model(&EventFollow{}).
		Where("event_id = ? AND user_id = ?", eventID, strings.ToLower(userID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func CountEventFollows(db *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := db.Model(&EventFollow{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// RecentEventFollows lists the latest follower rows for an event, newest first.
func RecentEventFollows(db *gorm.DB, eventID uint, limit int) ([]EventFollow, error) {
	follows := []EventFollow{}
	err := db.Where("event_id = ?", eventID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&follows).Error
	if err != nil {
		return nil, err
	}
	return follows, nil
}

package feed

import (
	"encoding/json"
	"time"

	"Foresight/models"
	"Foresight/utils"

	"gorm.io/gorm"
)

// RecordChange is the outbox row written by external processes (or database
// triggers) that mutate the watched relations outside this server. The payload
// is the affected row serialized as JSON, so deletes still carry enough to
// attribute the change.
type RecordChange struct {
	ID        int64     `gorm:"primary_key;autoIncrement" json:"id"`
	TableName string    `gorm:"size:64;not null" json:"table_name"`
	Action    string    `gorm:"size:16;not null" json:"action"`
	Payload   string    `gorm:"text" json:"payload"`
	ChangedAt time.Time `gorm:"autoCreateTime" json:"changed_at"`
	Processed bool      `gorm:"not null;default:false;index" json:"processed"`
}

// Monitor polls the outbox table and republishes committed changes onto the
// hub, bridging writes this process did not perform.
type Monitor struct {
	DB       *gorm.DB
	Hub      *Hub
	Interval time.Duration
	stop     chan struct{}
}

func NewMonitor(db *gorm.DB, hub *Hub) *Monitor {
	return &Monitor{
		DB:       db,
		Hub:      hub,
		Interval: time.Second,
		stop:     make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.drain()
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Monitor) Stop() {
	close(m.stop)
}

func (m *Monitor) drain() {
	var changes []RecordChange
	if err := m.DB.Where("processed = ?", false).
		Order("changed_at asc, id asc").
		Limit(100).
		Find(&changes).Error; err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("feed: fetching outbox changes: %v", err)
		}
		return
	}

	for _, change := range changes {
		if row, ok := decodeRow(change); ok {
			if err := m.Hub.Publish(Change{Kind: change.Action, Table: change.TableName, Row: row}); err != nil {
				if utils.ErrorLogger != nil {
					utils.ErrorLogger.Printf("feed: republishing outbox change %d: %v", change.ID, err)
				}
			}
		}
		if err := m.DB.Model(&RecordChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("feed: marking outbox change %d processed: %v", change.ID, err)
			}
			return
		}
	}
}

func decodeRow(change RecordChange) (interface{}, bool) {
	switch change.TableName {
	case TableEventFollows:
		var row models.EventFollow
		if err := json.Unmarshal([]byte(change.Payload), &row); err != nil {
			return nil, false
		}
		return row, true
	case TableChatMessages:
		var row models.ChatMessage
		if err := json.Unmarshal([]byte(change.Payload), &row); err != nil {
			return nil, false
		}
		return row, true
	case TablePredictions:
		var row models.Prediction
		if err := json.Unmarshal([]byte(change.Payload), &row); err != nil {
			return nil, false
		}
		return row, true
	}
	return nil, false
}

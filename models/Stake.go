package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	StakeOptionNo  = 0
	StakeOptionYes = 1
)

// Stake is an off-chain record of a confirmed on-chain stake, kept so the
// statistics endpoint can aggregate without querying the contract.
type Stake struct {
	ID        uint      `gorm:"primary_key;autoIncrement" json:"id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	Option    int       `gorm:"not null" json:"option"`
	Amount    float64   `gorm:"not null" json:"amount"`
	TxHash    string    `gorm:"size:80;uniqueIndex" json:"tx_hash"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Stake) Prepare() {
	s.ID = 0
	s.UserID = strings.ToLower(strings.TrimSpace(s.UserID))
	s.TxHash = strings.ToLower(strings.TrimSpace(s.TxHash))
}

func (s *Stake) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if s.UserID == "" {
		errorMessages["Unauthenticated"] = "A wallet identity is required"
	}
	if s.Option != StakeOptionNo && s.Option != StakeOptionYes {
		errorMessages["Invalid_option"] = "Option must be 0 (no) or 1 (yes)"
	}
	if s.Amount <= 0 {
		errorMessages["Invalid_amount"] = "Amount must be greater than 0"
	}
	if s.TxHash == "" {
		errorMessages["Required_tx_hash"] = "Transaction hash is required"
	}
	return errorMessages
}

func (s *Stake) SaveStake(db *gorm.DB) (*Stake, error) {
	if err := db.Create(&s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// PredictionStats is the derived betting aggregate for one event.
type PredictionStats struct {
	YesAmount        float64 `json:"yesAmount"`
	NoAmount         float64 `json:"noAmount"`
	TotalAmount      float64 `json:"totalAmount"`
	ParticipantCount int64   `json:"participantCount"`
	YesProbability   float64 `json:"yesProbability"`
	NoProbability    float64 `json:"noProbability"`
	BetCount         int64   `json:"betCount"`
}

func GetPredictionStats(db *gorm.DB, eventID uint) (*PredictionStats, error) {
	stats := &PredictionStats{}

	type amountRow struct {
		Option int
		Total  float64
	}
	rows := []amountRow{}
	err := db.Model(&Stake{}).
		Select("option, COALESCE(SUM(amount), 0) as total").
		Where("event_id = ?", eventID).
		Group("option").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Option == StakeOptionYes {
			stats.YesAmount = row.Total
		} else {
			stats.NoAmount = row.Total
		}
	}
	stats.TotalAmount = stats.YesAmount + stats.NoAmount

	if err := db.Model(&Stake{}).Where("event_id = ?", eventID).Count(&stats.BetCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&Stake{}).Where("event_id = ?", eventID).
		Distinct("user_id").Count(&stats.ParticipantCount).Error; err != nil {
		return nil, err
	}

	if stats.TotalAmount > 0 {
		stats.YesProbability = stats.YesAmount / stats.TotalAmount
		stats.NoProbability = stats.NoAmount / stats.TotalAmount
	} else {
		stats.YesProbability = 0.5
		stats.NoProbability = 0.5
	}
	return stats, nil
}

package controllers

import (
	"fmt"
	"time"

	"Foresight/models"
)

type PredictionCreateRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Deadline     time.Time `json:"deadline"`
	MinStake     float64   `json:"minStake"`
	Criteria     string    `json:"criteria"`
	ReferenceURL string    `json:"reference_url"`
	ImageURL     string    `json:"imageUrl"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type ChatPostRequest struct {
	Content string `json:"content"`
}

type StakePreflightRequest struct {
	Amount string `json:"amount"`
	Option int    `json:"option"`
}

type StakeRecordRequest struct {
	Option int     `json:"option"`
	Amount float64 `json:"amount"`
	TxHash string  `json:"tx_hash"`
}

type NonceRequest struct {
	Wallet string `json:"wallet"`
}

type LoginRequest struct {
	Wallet    string `json:"wallet"`
	Signature string `json:"signature"`
}

// DuplicateEventDTO enumerates one colliding record in a Conflict response.
type DuplicateEventDTO struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Status   string    `json:"status"`
	Deadline time.Time `json:"deadline"`
}

func duplicateEventDTOs(duplicates []models.Prediction) []DuplicateEventDTO {
	out := make([]DuplicateEventDTO, len(duplicates))
	for i, d := range duplicates {
		out[i] = DuplicateEventDTO{
			ID:       d.ID,
			Title:    d.Title,
			Category: d.Category,
			Status:   d.Status,
			Deadline: d.Deadline,
		}
	}
	return out
}

type TimeInfoDTO struct {
	CreatedAgo string `json:"createdAgo"`
	DeadlineIn string `json:"deadlineIn"`
	IsExpired  bool   `json:"isExpired"`
}

type PredictionDetailDTO struct {
	models.Prediction
	Stats    *models.PredictionStats `json:"stats"`
	TimeInfo TimeInfoDTO             `json:"timeInfo"`
}

func predictionDetailDTO(p *models.Prediction, stats *models.PredictionStats) PredictionDetailDTO {
	return PredictionDetailDTO{
		Prediction: *p,
		Stats:      stats,
		TimeInfo: TimeInfoDTO{
			CreatedAgo: humanizeDuration(time.Since(p.CreatedAt)) + " ago",
			DeadlineIn: deadlinePhrase(p.Deadline),
			IsExpired:  p.IsExpired(),
		},
	}
}

func deadlinePhrase(deadline time.Time) string {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return "expired " + humanizeDuration(-remaining) + " ago"
	}
	return "ends in " + humanizeDuration(remaining)
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "moments"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	}
}

// RecentEventDTO is one entry of a viewer's recently-viewed list.
type RecentEventDTO struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

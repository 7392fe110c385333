package models

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	PredictionStatusActive    = "active"
	PredictionStatusCompleted = "completed"
	PredictionStatusCancelled = "cancelled"
)

type Prediction struct {
	ID           uint      `gorm:"primary_key;autoIncrement" json:"id"`
	Title        string    `gorm:"size:255;not null;uniqueIndex:idx_predictions_title" json:"title"`
	Description  string    `gorm:"text;not null" json:"description"`
	Category     string    `gorm:"size:100;not null;index" json:"category"`
	Deadline     time.Time `gorm:"not null" json:"deadline"`
	MinStake     float64   `gorm:"not null" json:"min_stake"`
	Criteria     string    `gorm:"text;not null" json:"criteria"`
	ReferenceURL string    `gorm:"size:512" json:"reference_url"`
	ImageURL     string    `gorm:"size:512" json:"image_url"`
	Status       string    `gorm:"size:20;not null;default:active;index" json:"status"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Derived from event_follows at read time, never stored.
	FollowersCount int64 `gorm:"-" json:"followers_count"`
}

var imageSeedPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

func (p *Prediction) Prepare() {
	p.ID = 0
	p.Title = html.EscapeString(strings.TrimSpace(p.Title))
	p.Description = html.EscapeString(strings.TrimSpace(p.Description))
	p.Category = html.EscapeString(strings.TrimSpace(p.Category))
	p.Criteria = html.EscapeString(strings.TrimSpace(p.Criteria))
	p.ReferenceURL = strings.TrimSpace(p.ReferenceURL)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Status = PredictionStatusActive
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
}

func (p *Prediction) Validate() map[string]string {
	var errorMessages = make(map[string]string)

	if p.Title == "" {
		errorMessages["Required_title"] = "Title is required"
	}
	if p.Description == "" {
		errorMessages["Required_description"] = "Description is required"
	}
	if p.Category == "" {
		errorMessages["Required_category"] = "Category is required"
	}
	if p.Criteria == "" {
		errorMessages["Required_criteria"] = "Criteria is required"
	}
	if p.Deadline.IsZero() {
		errorMessages["Required_deadline"] = "Deadline is required"
	}
	if p.MinStake <= 0 {
		errorMessages["Invalid_min_stake"] = "Minimum stake must be greater than 0"
	}
	return errorMessages
}

// DefaultImageURL builds a deterministic avatar URL seeded by the title, used
// when no image was provided at creation time.
func (p *Prediction) DefaultImageURL() string {
	seed := strings.ToLower(imageSeedPattern.ReplaceAllString(p.Title, ""))
	if seed == "" {
		seed = "prediction"
	}
	return fmt.Sprintf(
		"https://api.dicebear.com/7.x/avataaars/svg?seed=%s&size=400&backgroundColor=b6e3f4,c0aede,d1d4f9&radius=20",
		url.QueryEscape(seed),
	)
}

func (p *Prediction) SavePrediction(db *gorm.DB) (*Prediction, error) {
	if p.ImageURL == "" {
		p.ImageURL = p.DefaultImageURL()
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// FindDuplicatesByTitle returns every prediction sharing the given title, so a
// Conflict response can enumerate the colliding records.
func (p *Prediction) FindDuplicatesByTitle(db *gorm.DB, title string) ([]Prediction, error) {
	duplicates := []Prediction{}
	err := db.Model(&Prediction{}).
		Select("id, title, category, status, deadline").
		Where("title = ?", title).
		Find(&duplicates).Error
	if err != nil {
		return nil, err
	}
	return duplicates, nil
}

func (p *Prediction) FindAllPredictions(db *gorm.DB, category, status string, limit int) ([]Prediction, error) {
	predictions := []Prediction{}
	query := db.Model(&Prediction{}).Order("created_at desc")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&predictions).Error; err != nil {
		return nil, err
	}
	for i := range predictions {
		count, err := CountEventFollows(db, predictions[i].ID)
		if err != nil {
			// Degrade the aggregate to 0 rather than failing the listing.
			count = 0
		}
		predictions[i].FollowersCount = count
	}
	return predictions, nil
}

func (p *Prediction) FindPredictionByID(db *gorm.DB, pid uint) (*Prediction, error) {
	if err := db.First(p, pid).Error; err != nil {
		return nil, err
	}
	count, err := CountEventFollows(db, p.ID)
	if err == nil {
		p.FollowersCount = count
	}
	return p, nil
}

func (p *Prediction) UpdateStatus(db *gorm.DB, status string) error {
	switch status {
	case PredictionStatusActive, PredictionStatusCompleted, PredictionStatusCancelled:
	default:
		return errors.New("invalid status")
	}
	return db.Model(&Prediction{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (p *Prediction) IsExpired() bool {
	return time.Now().After(p.Deadline)
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newModelTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&Prediction{}, &EventFollow{}, &ChatMessage{}, &Stake{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func validPrediction(title string) Prediction {
	return Prediction{
		Title:       title,
		Description: "A test prediction",
		Category:    "crypto",
		Deadline:    time.Now().Add(24 * time.Hour),
		MinStake:    1,
		Criteria:    "Resolves by close price",
	}
}

func TestPredictionValidateRequiredFields(t *testing.T) {
	p := Prediction{}
	p.Prepare()
	errs := p.Validate()

	assert.Contains(t, errs, "Required_title")
	assert.Contains(t, errs, "Required_description")
	assert.Contains(t, errs, "Required_category")
	assert.Contains(t, errs, "Required_criteria")
	assert.Contains(t, errs, "Required_deadline")
	assert.Contains(t, errs, "Invalid_min_stake")

	p = validPrediction("BTC above 100k")
	p.Prepare()
	assert.Empty(t, p.Validate())
	assert.Equal(t, PredictionStatusActive, p.Status)
}

func TestPrepareEscapesUserText(t *testing.T) {
	p := validPrediction(`<script>alert("x")</script>`)
	p.Prepare()
	assert.NotContains(t, p.Title, "<script>")
}

func TestSavePredictionFillsDefaultImage(t *testing.T) {
	db := newModelTestDB(t)
	p := validPrediction("No image given")
	p.Prepare()

	saved, err := p.SavePrediction(db)
	assert.NoError(t, err)
	assert.Contains(t, saved.ImageURL, "dicebear.com")
	assert.Contains(t, saved.ImageURL, "seed=noimagegiven")
}

func TestFindDuplicatesByTitleEnumeratesCollisions(t *testing.T) {
	db := newModelTestDB(t)
	p := validPrediction("Unique headline")
	p.Prepare()
	saved, err := p.SavePrediction(db)
	assert.NoError(t, err)

	duplicates, err := p.FindDuplicatesByTitle(db, "Unique headline")
	assert.NoError(t, err)
	assert.Len(t, duplicates, 1)
	assert.Equal(t, saved.ID, duplicates[0].ID)
	assert.Equal(t, "crypto", duplicates[0].Category)
	assert.Equal(t, PredictionStatusActive, duplicates[0].Status)

	duplicates, err = p.FindDuplicatesByTitle(db, "Different headline")
	assert.NoError(t, err)
	assert.Empty(t, duplicates)
}

func TestFindAllPredictionsDerivesFollowerCounts(t *testing.T) {
	db := newModelTestDB(t)
	p := validPrediction("Counted event")
	p.Prepare()
	saved, err := p.SavePrediction(db)
	assert.NoError(t, err)

	for _, wallet := range []string{
		"0xaaaa000000000000000000000000000000000001",
		"0xaaaa000000000000000000000000000000000002",
	} {
		f := EventFollow{EventID: saved.ID, UserID: wallet}
		_, err := f.SaveEventFollow(db)
		assert.NoError(t, err)
	}

	list, err := p.FindAllPredictions(db, "", "", 0)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].FollowersCount)
}

func TestFindAllPredictionsFilters(t *testing.T) {
	db := newModelTestDB(t)
	a := validPrediction("Crypto one")
	a.Prepare()
	_, err := a.SavePrediction(db)
	assert.NoError(t, err)

	b := validPrediction("Sports one")
	b.Category = "sports"
	b.Prepare()
	savedB, err := b.SavePrediction(db)
	assert.NoError(t, err)
	assert.NoError(t, savedB.UpdateStatus(db, PredictionStatusCompleted))

	list, err := a.FindAllPredictions(db, "sports", "", 0)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "sports", list[0].Category)

	list, err = a.FindAllPredictions(db, "", PredictionStatusCompleted, 0)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, savedB.ID, list[0].ID)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	db := newModelTestDB(t)
	p := validPrediction("Status event")
	p.Prepare()
	saved, err := p.SavePrediction(db)
	assert.NoError(t, err)

	assert.Error(t, saved.UpdateStatus(db, "paused"))
	assert.NoError(t, saved.UpdateStatus(db, PredictionStatusCancelled))

	reloaded := Prediction{}
	_, err = reloaded.FindPredictionByID(db, saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, PredictionStatusCancelled, reloaded.Status)
}

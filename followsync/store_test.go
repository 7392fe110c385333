package followsync

import (
	"context"
	"testing"

	"Foresight/feed"
	"Foresight/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newStoreTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Prediction{}, &models.EventFollow{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestDBStoreToggleCreatesAndRemovesRow(t *testing.T) {
	db := newStoreTestDB(t)
	hub := feed.NewHub()
	store := &DBStore{DB: db, Hub: hub}
	sub := hub.Subscribe(feed.TableEventFollows, nil)
	defer sub.Unsubscribe()

	ctx := context.Background()

	following, err := store.ToggleFollow(ctx, 1, "0xAAAA000000000000000000000000000000000001")
	assert.NoError(t, err)
	assert.True(t, following)

	change := <-sub.C
	assert.Equal(t, feed.KindInsert, change.Kind)
	row := change.Row.(models.EventFollow)
	assert.Equal(t, "0xaaaa000000000000000000000000000000000001", row.UserID)

	st, err := store.FollowStatus(ctx, 1, "0xaaaa000000000000000000000000000000000001")
	assert.NoError(t, err)
	assert.True(t, st.Following)
	assert.Equal(t, int64(1), st.FollowersCount)

	following, err = store.ToggleFollow(ctx, 1, "0xaaaa000000000000000000000000000000000001")
	assert.NoError(t, err)
	assert.False(t, following)

	change = <-sub.C
	assert.Equal(t, feed.KindDelete, change.Kind)

	st, err = store.FollowStatus(ctx, 1, "0xaaaa000000000000000000000000000000000001")
	assert.NoError(t, err)
	assert.False(t, st.Following)
	assert.Equal(t, int64(0), st.FollowersCount)
}

func TestDBStoreToggleRejectsAnonymousViewer(t *testing.T) {
	store := &DBStore{DB: newStoreTestDB(t), Hub: feed.NewHub()}

	_, err := store.ToggleFollow(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDBStoreStatusForAnonymousViewer(t *testing.T) {
	db := newStoreTestDB(t)
	store := &DBStore{DB: db, Hub: feed.NewHub()}
	ctx := context.Background()

	_, err := store.ToggleFollow(ctx, 1, "0xbbbb000000000000000000000000000000000002")
	assert.NoError(t, err)

	st, err := store.FollowStatus(ctx, 1, "")
	assert.NoError(t, err)
	assert.False(t, st.Following)
	assert.Equal(t, int64(1), st.FollowersCount)
}

func TestEventFollowDedupeUnderRepeatInsert(t *testing.T) {
	db := newStoreTestDB(t)

	follow := models.EventFollow{EventID: 2, UserID: "0xcccc000000000000000000000000000000000003"}
	created, err := follow.SaveEventFollow(db)
	assert.NoError(t, err)
	assert.True(t, created)

	again := models.EventFollow{EventID: 2, UserID: "0xcccc000000000000000000000000000000000003"}
	created, err = again.SaveEventFollow(db)
	assert.NoError(t, err)
	assert.False(t, created)

	count, err := models.CountEventFollows(db, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

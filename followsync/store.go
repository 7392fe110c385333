package followsync

import (
	"context"
	"strings"

	"Foresight/feed"
	"Foresight/models"

	"gorm.io/gorm"
)

// DBStore is the gorm-backed follow relation. Its writes publish the matching
// change onto the hub, so every subscribed session observes them.
type DBStore struct {
	DB  *gorm.DB
	Hub *feed.Hub
}

func (s *DBStore) FollowStatus(ctx context.Context, eventID uint, viewer string) (Status, error) {
	st := Status{}
	count, err := models.CountEventFollows(s.DB.WithContext(ctx), eventID)
	if err != nil {
		return Status{}, err
	}
	st.FollowersCount = count

	if viewer != "" {
		follow := models.EventFollow{}
		following, err := follow.IsFollowing(s.DB.WithContext(ctx), eventID, viewer)
		if err != nil {
			return Status{}, err
		}
		st.Following = following
	}
	return st, nil
}

// ToggleFollow flips the (event, viewer) follow row and returns the new state.
func (s *DBStore) ToggleFollow(ctx context.Context, eventID uint, viewer string) (bool, error) {
	viewer = strings.ToLower(strings.TrimSpace(viewer))
	if viewer == "" {
		return false, ErrUnauthenticated
	}
	db := s.DB.WithContext(ctx)

	follow := models.EventFollow{EventID: eventID, UserID: viewer}
	following, err := follow.IsFollowing(db, eventID, viewer)
	if err != nil {
		return false, err
	}

	if following {
		deleted, err := follow.DeleteEventFollow(db)
		if err != nil {
			return true, err
		}
		if deleted && s.Hub != nil {
			_ = s.Hub.Publish(feed.Change{Kind: feed.KindDelete, Table: feed.TableEventFollows, Row: follow})
		}
		return false, nil
	}

	created, err := follow.SaveEventFollow(db)
	if err != nil {
		return false, err
	}
	if created && s.Hub != nil {
		_ = s.Hub.Publish(feed.Change{Kind: feed.KindInsert, Table: feed.TableEventFollows, Row: follow})
	}
	return true, nil
}

package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinmap/internal/models"
	"pinmap/internal/spots"
)

const (
	viewerID = uint(1)
	aliceID  = uint(2)
	bobID    = uint(3)
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

func list(id, owner uint, public bool, created time.Time) *models.List {
	return &models.List{ID: id, UserID: owner, IsPublic: public, CreatedAt: created}
}

func pin(id uint, l *models.List, lat, lng float64, created time.Time) *models.Pin {
	return &models.Pin{ID: id, UserID: l.UserID, ListID: l.ID, List: l, Lat: lat, Lng: lng, CreatedAt: created}
}

func profiles() map[uint]*models.Profile {
	return map[uint]*models.Profile{
		viewerID: {ID: viewerID, Username: "viewer"},
		aliceID:  {ID: aliceID, Username: "alice"},
		bobID:    {ID: bobID, Username: "bob"},
	}
}

func TestComposeZeroFollows(t *testing.T) {
	own := list(10, viewerID, false, at(0))
	in := Input{
		ViewerID: viewerID,
		OwnLists: []*models.List{own},
		OwnPins:  []*models.Pin{pin(100, own, 1, 1, at(5))},
		Profiles: profiles(),
	}

	f := Compose(in)
	assert.NotNil(t, f.Followed)
	assert.Empty(t, f.Followed)
	require.Len(t, f.Personal, 2)
	assert.Equal(t, KindPinSaved, f.Personal[0].Kind)
	assert.Equal(t, "viewer", f.Personal[0].Actor.Username)
	assert.Len(t, f.Entries, 2)
}

func TestComposeEmptyInput(t *testing.T) {
	f := Compose(Input{})
	assert.Empty(t, f.Personal)
	assert.Empty(t, f.Followed)
	assert.Empty(t, f.Entries)
}

func TestComposeNeverLeaksPrivateLists(t *testing.T) {
	alicePublic := list(20, aliceID, true, at(1))
	alicePrivate := list(21, aliceID, false, at(2))
	bobPrivate := list(30, bobID, false, at(3))

	in := Input{
		ViewerID:      viewerID,
		Following:     []uint{aliceID, bobID},
		FollowedLists: []*models.List{alicePublic, alicePrivate, bobPrivate},
		FollowedPins: []*models.Pin{
			pin(200, alicePublic, 1, 1, at(10)),
			pin(201, alicePrivate, 1, 1, at(11)),
			pin(300, bobPrivate, 1, 1, at(12)),
		},
		LikedLists: []*models.List{bobPrivate},
		Profiles:   profiles(),
	}

	f := Compose(in)
	for _, e := range f.Entries {
		if e.List != nil {
			assert.True(t, e.List.IsPublic || e.List.UserID == viewerID, "entry %s/%d leaked a private list", e.Kind, e.SubjectID())
		}
	}
	require.Len(t, f.Followed, 2)
	assert.Equal(t, uint(200), f.Followed[0].SubjectID())
	assert.Equal(t, uint(20), f.Followed[1].SubjectID())
}

func TestComposeOwnPrivateListsVisibleToOwner(t *testing.T) {
	own := list(10, viewerID, false, at(0))
	f := Compose(Input{
		ViewerID: viewerID,
		OwnPins:  []*models.Pin{pin(100, own, 1, 1, at(1))},
	})
	require.Len(t, f.Personal, 1)
	assert.Equal(t, uint(100), f.Personal[0].SubjectID())
}

func TestComposeIgnoresNonFollowedAuthors(t *testing.T) {
	bobPublic := list(30, bobID, true, at(3))
	f := Compose(Input{
		ViewerID:      viewerID,
		Following:     []uint{aliceID},
		FollowedLists: []*models.List{bobPublic},
		FollowedPins:  []*models.Pin{pin(300, bobPublic, 1, 1, at(4))},
	})
	assert.Empty(t, f.Followed)
	assert.Empty(t, f.Entries)
}

func TestComposeDeduplicatesAcrossPaths(t *testing.T) {
	own := list(10, viewerID, true, at(0))
	alicePublic := list(20, aliceID, true, at(1))
	p := pin(100, own, 1, 1, at(2))

	f := Compose(Input{
		ViewerID:      viewerID,
		OwnLists:      []*models.List{own, own},
		OwnPins:       []*models.Pin{p, p},
		Following:     []uint{aliceID},
		FollowedLists: []*models.List{alicePublic},
		LikedLists:    []*models.List{own, alicePublic},
	})

	seen := map[subject]int{}
	for _, e := range f.Entries {
		seen[subject{e.Kind, e.SubjectID()}]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "%s %d appears %d times", k.kind, k.id, n)
	}
	assert.Len(t, f.Entries, 3)
	assert.Len(t, f.Personal, 2)
	assert.Len(t, f.Followed, 1)
}

func TestComposeLikedListsOfStrangers(t *testing.T) {
	bobPublic := list(30, bobID, true, at(3))
	f := Compose(Input{ViewerID: viewerID, LikedLists: []*models.List{bobPublic}, Profiles: profiles()})
	require.Len(t, f.Entries, 1)
	assert.Equal(t, SourceLiked, f.Entries[0].Source)
	assert.Equal(t, "bob", f.Entries[0].Actor.Username)
	assert.Empty(t, f.Followed)
}

func TestComposeRecentOrder(t *testing.T) {
	own := list(10, viewerID, true, at(5))
	alicePublic := list(20, aliceID, true, at(1))
	f := Compose(Input{
		ViewerID:      viewerID,
		OwnLists:      []*models.List{own},
		OwnPins:       []*models.Pin{pin(101, own, 1, 1, at(5)), pin(100, own, 2, 2, at(7))},
		Following:     []uint{aliceID},
		FollowedLists: []*models.List{alicePublic},
		FollowedPins:  []*models.Pin{pin(200, alicePublic, 3, 3, at(6))},
	})

	var got []uint
	for _, e := range f.Entries {
		got = append(got, e.SubjectID())
	}
	// at(5) ties between list 10 and pin 101: list_created sorts before pin_saved.
	assert.Equal(t, []uint{100, 200, 10, 101, 20}, got)
}

func TestComposePopularOrder(t *testing.T) {
	own := list(10, viewerID, true, at(0))
	alice := list(20, aliceID, true, at(0))
	bob := list(30, bobID, true, at(0))
	alice.LikesCount = 1

	popularSpot := []*models.Pin{
		pin(101, own, 40.7303, -74.0023, at(1)),
		pin(201, alice, 40.73031, -74.00231, at(2)),
		pin(301, bob, 40.73035, -74.00229, at(3)),
	}
	lonely := pin(102, own, 10, 10, at(50))

	f := Compose(Input{
		ViewerID:      viewerID,
		OwnPins:       []*models.Pin{popularSpot[0], lonely},
		Following:     []uint{aliceID, bobID},
		FollowedLists: []*models.List{alice},
		FollowedPins:  popularSpot[1:],
		Order:         OrderPopular,
		Grid:          spots.NewGrid(3),
		AsOf:          at(60),
	})

	var got []uint
	for _, e := range f.Entries {
		got = append(got, e.SubjectID())
	}
	require.Len(t, got, 5)
	assert.Equal(t, []uint{301, 201, 101}, got[:3], "pins of the busiest spot lead, newest first")
	assert.ElementsMatch(t, []uint{102, 20}, got[3:])
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderPopular, ParseOrder("popular"))
	assert.Equal(t, OrderRecent, ParseOrder("recent"))
	assert.Equal(t, OrderRecent, ParseOrder(""))
	assert.Equal(t, OrderRecent, ParseOrder("bogus"))
}

func TestGroupByActor(t *testing.T) {
	alice := &models.Profile{ID: aliceID, Username: "alice"}
	bob := &models.Profile{ID: bobID, Username: "bob"}
	carol := &models.Profile{ID: 4, Username: "carol"}

	lists := []*models.List{
		list(20, aliceID, true, at(1)),
		list(21, aliceID, true, at(9)),
		list(22, aliceID, false, at(10)),
		list(30, bobID, false, at(2)),
	}

	groups := GroupByActor([]*models.Profile{bob, alice, carol, alice}, lists)
	require.Len(t, groups, 1)
	assert.Equal(t, "alice", groups[0].Actor.Username)
	require.Len(t, groups[0].Lists, 2)
	assert.Equal(t, uint(21), groups[0].Lists[0].ID)
	assert.Equal(t, uint(20), groups[0].Lists[1].ID)
}

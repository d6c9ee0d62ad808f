// Package feed merges a viewer's own activity with the public activity of the
// profiles they follow.
package feed

import (
	"sort"
	"time"

	"pinmap/internal/models"
	"pinmap/internal/spots"
)

// Kind identifies what an entry is about.
type Kind string

const (
	KindPinSaved    Kind = "pin_saved"
	KindListCreated Kind = "list_created"
)

// Source records the path through which an entry reached the feed.
type Source string

const (
	SourceOwn      Source = "own"
	SourceFollowed Source = "followed"
	SourceLiked    Source = "liked"
)

// Order selects how entries are sorted.
type Order string

const (
	OrderRecent  Order = "recent"
	OrderPopular Order = "popular"
)

// ParseOrder maps a query value to an Order, defaulting to OrderRecent.
func ParseOrder(s string) Order {
	if Order(s) == OrderPopular {
		return OrderPopular
	}
	return OrderRecent
}

// Entry is one activity item.
type Entry struct {
	Kind      Kind                   `json:"kind"`
	Source    Source                 `json:"source"`
	Actor     *models.ProfileSummary `json:"actor"`
	List      *models.List           `json:"list,omitempty"`
	Pin       *models.Pin            `json:"pin,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// SubjectID is the id of the pin or list the entry describes.
func (e Entry) SubjectID() uint {
	if e.Kind == KindPinSaved && e.Pin != nil {
		return e.Pin.ID
	}
	if e.List != nil {
		return e.List.ID
	}
	return 0
}

// Input is a snapshot of everything the composer needs. The caller fetches it.
type Input struct {
	ViewerID      uint
	OwnLists      []*models.List
	OwnPins       []*models.Pin
	Following     []uint
	FollowedLists []*models.List
	FollowedPins  []*models.Pin
	LikedLists    []*models.List
	Profiles      map[uint]*models.Profile
	Order         Order
	// Grid and AsOf are only used by OrderPopular. A zero Grid means the
	// default precision and a zero AsOf means time.Now.
	Grid spots.Grid
	AsOf time.Time
}

// Feed is the composed result. Personal and Followed are ordered subsets of
// Entries, which is deduplicated across every path.
type Feed struct {
	Personal []Entry `json:"personal"`
	Followed []Entry `json:"followed"`
	Entries  []Entry `json:"entries"`
}

type subject struct {
	kind Kind
	id   uint
}

type composer struct {
	in        Input
	following map[uint]struct{}
	seen      map[subject]struct{}
	feed      Feed
}

// Compose builds the feed. It never fails: records that are invisible to the
// viewer or malformed are skipped.
func Compose(in Input) Feed {
	c := &composer{
		in:        in,
		following: make(map[uint]struct{}, len(in.Following)),
		seen:      make(map[subject]struct{}),
	}
	for _, id := range in.Following {
		if id != 0 && id != in.ViewerID {
			c.following[id] = struct{}{}
		}
	}

	for _, l := range in.OwnLists {
		if l != nil && in.ViewerID != 0 && l.UserID == in.ViewerID {
			c.add(c.listEntry(l, SourceOwn))
		}
	}
	for _, p := range in.OwnPins {
		if p != nil && in.ViewerID != 0 && p.UserID == in.ViewerID && c.pinVisible(p, true) {
			c.add(c.pinEntry(p, SourceOwn))
		}
	}

	for _, l := range in.FollowedLists {
		if l != nil && c.followed(l.UserID) && l.VisibleTo(in.ViewerID) {
			c.add(c.listEntry(l, SourceFollowed))
		}
	}
	for _, p := range in.FollowedPins {
		if p != nil && c.followed(p.UserID) && c.pinVisible(p, false) {
			c.add(c.pinEntry(p, SourceFollowed))
		}
	}

	for _, l := range in.LikedLists {
		if l != nil && l.VisibleTo(in.ViewerID) {
			c.add(c.listEntry(l, SourceLiked))
		}
	}

	less := c.lessFunc()
	for _, entries := range [][]Entry{c.feed.Personal, c.feed.Followed, c.feed.Entries} {
		sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	}
	if c.feed.Personal == nil {
		c.feed.Personal = []Entry{}
	}
	if c.feed.Followed == nil {
		c.feed.Followed = []Entry{}
	}
	if c.feed.Entries == nil {
		c.feed.Entries = []Entry{}
	}
	return c.feed
}

func (c *composer) followed(userID uint) bool {
	_, ok := c.following[userID]
	return ok
}

// pinVisible requires list metadata for anyone but the owner, and never lets a
// private list leak to a non-owner.
func (c *composer) pinVisible(p *models.Pin, own bool) bool {
	if p.List == nil {
		return own
	}
	if p.List.ID != p.ListID {
		return false
	}
	return p.List.VisibleTo(c.in.ViewerID)
}

func (c *composer) add(e Entry) {
	key := subject{kind: e.Kind, id: e.SubjectID()}
	if key.id == 0 {
		return
	}
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}

	switch e.Source {
	case SourceOwn:
		c.feed.Personal = append(c.feed.Personal, e)
	case SourceFollowed:
		c.feed.Followed = append(c.feed.Followed, e)
	}
	c.feed.Entries = append(c.feed.Entries, e)
}

func (c *composer) actor(userID uint, fallback *models.Profile) *models.ProfileSummary {
	if p, ok := c.in.Profiles[userID]; ok && p != nil {
		s := p.Summary()
		return &s
	}
	if fallback != nil && fallback.ID == userID {
		s := fallback.Summary()
		return &s
	}
	return &models.ProfileSummary{ID: userID}
}

func (c *composer) listEntry(l *models.List, src Source) Entry {
	return Entry{
		Kind:      KindListCreated,
		Source:    src,
		Actor:     c.actor(l.UserID, l.Owner),
		List:      l,
		CreatedAt: l.CreatedAt,
	}
}

func (c *composer) pinEntry(p *models.Pin, src Source) Entry {
	return Entry{
		Kind:      KindPinSaved,
		Source:    src,
		Actor:     c.actor(p.UserID, p.Owner),
		List:      p.List,
		Pin:       p,
		CreatedAt: p.CreatedAt,
	}
}

func (c *composer) lessFunc() func(a, b Entry) bool {
	if c.in.Order != OrderPopular {
		return lessRecent
	}
	return popularLess(c.feed.Entries, c.in.Grid, c.in.AsOf)
}

// lessRecent orders by CreatedAt desc, then kind, then subject id desc.
func lessRecent(a, b Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.SubjectID() > b.SubjectID()
}

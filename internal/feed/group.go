package feed

import (
	"sort"

	"pinmap/internal/models"
)

// Group is one followee with their public lists.
type Group struct {
	Actor models.ProfileSummary `json:"actor"`
	Lists []*models.List        `json:"lists"`
}

// GroupByActor groups public lists under their owners, keeping the order of
// profiles. Profiles without any public list are dropped.
func GroupByActor(profiles []*models.Profile, lists []*models.List) []Group {
	byOwner := make(map[uint][]*models.List)
	for _, l := range lists {
		if l == nil || !l.IsPublic {
			continue
		}
		byOwner[l.UserID] = append(byOwner[l.UserID], l)
	}

	groups := make([]Group, 0, len(profiles))
	emitted := make(map[uint]struct{}, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if _, dup := emitted[p.ID]; dup {
			continue
		}
		owned := byOwner[p.ID]
		if len(owned) == 0 {
			continue
		}
		sort.SliceStable(owned, func(i, j int) bool {
			if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
				return owned[i].CreatedAt.After(owned[j].CreatedAt)
			}
			return owned[i].ID > owned[j].ID
		})
		emitted[p.ID] = struct{}{}
		groups = append(groups, Group{Actor: p.Summary(), Lists: owned})
	}
	return groups
}

package players

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/models"
)

// SearchFilter narrows a catalog search.
type SearchFilter struct {
	Position *models.Position
	Query    string // case-insensitive substring on full name
}

// Repository is the read-only player catalog contract consumed by the
// engines and the bot policy.
type Repository interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	SearchPlayers(ctx context.Context, filter SearchFilter) ([]models.Player, error)
}

// SortByADP orders players by ascending ADP with absent ADP last, ties
// broken by name. The slice is sorted in place.
func SortByADP(list []models.Player) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].ADP, list[j].ADP
		switch {
		case a == nil && b == nil:
			return list[i].FullName < list[j].FullName
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return list[i].FullName < list[j].FullName
		}
	})
}

// MatchesFilter reports whether the player passes the filter.
func MatchesFilter(p *models.Player, filter SearchFilter) bool {
	if filter.Position != nil && p.Position != *filter.Position {
		return false
	}
	if filter.Query != "" && !strings.Contains(strings.ToLower(p.FullName), strings.ToLower(filter.Query)) {
		return false
	}
	return true
}

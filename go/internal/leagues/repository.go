package leagues

import (
	"context"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/go/internal/models"
)

// Repository is the persistence contract for leagues and their members.
type Repository interface {
	CreateLeague(ctx context.Context, league *models.League) (*models.League, error)
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetLeagueByJoinCode(ctx context.Context, code string) (*models.League, error)
	UpdateLeaguePhase(ctx context.Context, id uuid.UUID, phase models.LeaguePhase) (*models.League, error)
	UpdateCurrentWeek(ctx context.Context, id uuid.UUID, week int) (*models.League, error)

	CreateMember(ctx context.Context, member *models.Member) (*models.Member, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error)
}

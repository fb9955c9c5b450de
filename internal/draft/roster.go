package draft

import (
	"alcyxob/team-workouts/internal/domain"
	"context"

	"golang.org/x/sync/errgroup"
)

// PlayerDirectory resolves player ids to roster entries. Unknown ids are skipped.
type PlayerDirectory interface {
	PlayersByIDs(ctx context.Context, ids []string) ([]domain.Player, error)
}

// TeamDirectory resolves team ids to teams with their current members.
type TeamDirectory interface {
	TeamsByIDs(ctx context.Context, ids []string) ([]domain.Team, error)
}

// resolveRoster loads the players and teams referenced by d. Assigned players
// and teams are fetched concurrently; members of assigned teams that were not
// assigned directly are fetched afterwards so warnings can name them.
func resolveRoster(ctx context.Context, d *domain.WorkoutDraft, players PlayerDirectory, teams TeamDirectory) ([]domain.Player, []domain.Team, error) {
	var (
		ps []domain.Player
		ts []domain.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	if players != nil && len(d.AssignedPlayerIDs) > 0 {
		g.Go(func() error {
			var err error
			ps, err = players.PlayersByIDs(gctx, d.AssignedPlayerIDs)
			return err
		})
	}
	if teams != nil && len(d.AssignedTeamIDs) > 0 {
		g.Go(func() error {
			var err error
			ts, err = teams.TeamsByIDs(gctx, d.AssignedTeamIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if players == nil {
		return ps, ts, nil
	}
	var missing []string
	for _, t := range ts {
		for _, id := range t.PlayerIDs {
			if !d.HasPlayer(id) {
				missing = append(missing, id)
			}
		}
	}
	if missing = domain.NormalizeIDs(missing); len(missing) > 0 {
		members, err := players.PlayersByIDs(ctx, missing)
		if err != nil {
			return nil, nil, err
		}
		ps = append(ps, members...)
	}
	return ps, ts, nil
}

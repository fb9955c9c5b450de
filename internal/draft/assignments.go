package draft

import "alcyxob/team-workouts/internal/domain"

// AddPlayer assigns a player. Adding an already assigned player is a no-op.
// It reports whether the draft changed.
func (s *Store) AddPlayer(id string) (bool, error) {
	if id == "" || s.current.HasPlayer(id) {
		return false, nil
	}
	ids := append(append([]string(nil), s.current.AssignedPlayerIDs...), id)
	return true, s.ApplyPatch(domain.DraftPatch{AssignedPlayerIDs: &ids})
}

// RemovePlayer unassigns a player. Removing an absent player is a no-op.
func (s *Store) RemovePlayer(id string) (bool, error) {
	if !s.current.HasPlayer(id) {
		return false, nil
	}
	ids := without(s.current.AssignedPlayerIDs, id)
	return true, s.ApplyPatch(domain.DraftPatch{AssignedPlayerIDs: &ids})
}

func (s *Store) AddTeam(id string) (bool, error) {
	if id == "" || s.current.HasTeam(id) {
		return false, nil
	}
	ids := append(append([]string(nil), s.current.AssignedTeamIDs...), id)
	return true, s.ApplyPatch(domain.DraftPatch{AssignedTeamIDs: &ids})
}

func (s *Store) RemoveTeam(id string) (bool, error) {
	if !s.current.HasTeam(id) {
		return false, nil
	}
	ids := without(s.current.AssignedTeamIDs, id)
	return true, s.ApplyPatch(domain.DraftPatch{AssignedTeamIDs: &ids})
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

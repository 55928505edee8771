package pick

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// Starting ban pools, created on a scope's first ban in a draft.
const (
	UserBanCredits = 2
	TeamBanCredits = 3
)

type banScope struct {
	id      uuid.UUID
	team    bool
	initial int
}

// resolveScope picks the pool a ban is charged to: the requester's team in
// team leagues, the requester otherwise.
func (a *App) resolveScope(ctx context.Context, league *models.League, requesterID uuid.UUID) (banScope, error) {
	if league.TeamsEnabled {
		teamID, ok, err := a.members.TeamOf(ctx, league.ID, requesterID)
		if err != nil {
			return banScope{}, err
		}
		if ok {
			return banScope{id: teamID, team: true, initial: TeamBanCredits}, nil
		}
	}
	return banScope{id: requesterID, initial: UserBanCredits}, nil
}

// sameTeam reports whether both users sit on one team of a team league.
func (a *App) sameTeam(ctx context.Context, league *models.League, u1, u2 uuid.UUID) (bool, error) {
	if !league.TeamsEnabled {
		return false, nil
	}
	t1, ok1, err := a.members.TeamOf(ctx, league.ID, u1)
	if err != nil {
		return false, err
	}
	t2, ok2, err := a.members.TeamOf(ctx, league.ID, u2)
	if err != nil {
		return false, err
	}
	return ok1 && ok2 && t1 == t2, nil
}

// canBan applies the eligibility rule: the target slot must directly precede
// one of the requester's slots, unless both share a team.
func canBan(requesterSlots []int, targetIndex int, teammates bool) bool {
	return teammates || slices.Contains(requesterSlots, targetIndex+1)
}

// lastSlotProtected reports whether userID holds the final turn without also
// holding the first, which leaves nobody to pick after a ban.
func lastSlotProtected(draft *models.Draft, userID uuid.UUID) bool {
	n := len(draft.PickOrder)
	return n > 0 && draft.PickOrder[n-1] == userID && draft.PickOrder[0] != userID
}

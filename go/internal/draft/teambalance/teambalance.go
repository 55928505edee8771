// Package teambalance decides whether league members can still be split into
// evenly sized teams given the teams formed so far.
package teambalance

import (
	"errors"
	"fmt"

	"github.com/mcdev12/gridpick/go/internal/apperr"
)

const (
	MinTeamSize = 2
	MinTeams    = 2
)

var ErrTooFewPlayers = errors.New("not enough players to form teams")

// MaxTeams caps the number of teams by player count and, when the season has
// at least MinTeams constructors, by constructor count.
func MaxTeams(totalPlayers, seasonConstructorCount int) (int, error) {
	maxByPlayers := totalPlayers / MinTeamSize
	if maxByPlayers < MinTeams {
		return 0, fmt.Errorf("%w: %w: %d players, need at least %d",
			apperr.ErrBadRequest, ErrTooFewPlayers, totalPlayers, MinTeams*MinTeamSize)
	}

	limit := maxByPlayers
	if seasonConstructorCount >= MinTeams {
		limit = seasonConstructorCount
	}
	return min(maxByPlayers, limit), nil
}

// IsFeasible reports whether existing team sizes can grow into a partition of
// totalPlayers into k teams whose sizes differ by at most one, for some k in
// [MinTeams, maxTeams].
func IsFeasible(totalPlayers int, existingTeamSizes []int, maxTeams int) bool {
	assigned := 0
	for _, size := range existingTeamSizes {
		if size < MinTeamSize {
			return false
		}
		assigned += size
	}
	if assigned > totalPlayers {
		return false
	}
	remaining := totalPlayers - assigned
	existingCount := len(existingTeamSizes)

	for k := max(MinTeams, existingCount); k <= maxTeams; k++ {
		minSize := totalPlayers / k
		maxSize := (totalPlayers + k - 1) / k
		if minSize < MinTeamSize {
			continue
		}

		fits := true
		minRequired, maxCapacity := 0, 0
		for _, size := range existingTeamSizes {
			if size > maxSize {
				fits = false
				break
			}
			minRequired += max(0, minSize-size)
			maxCapacity += maxSize - size
		}
		if !fits {
			continue
		}
		newTeams := k - existingCount
		minRequired += newTeams * minSize
		maxCapacity += newTeams * maxSize

		if remaining >= minRequired && remaining <= maxCapacity {
			return true
		}
	}
	return false
}

// Validate runs MaxTeams then IsFeasible and reports an infeasible layout as a
// bad request.
func Validate(totalPlayers, seasonConstructorCount int, prospectiveSizes []int) error {
	maxTeams, err := MaxTeams(totalPlayers, seasonConstructorCount)
	if err != nil {
		return err
	}
	if len(prospectiveSizes) > maxTeams {
		return fmt.Errorf("%w: %d teams exceeds the maximum of %d", apperr.ErrBadRequest, len(prospectiveSizes), maxTeams)
	}
	if !IsFeasible(totalPlayers, prospectiveSizes, maxTeams) {
		return fmt.Errorf("%w: team sizes %v cannot be balanced across %d players", apperr.ErrBadRequest, prospectiveSizes, totalPlayers)
	}
	return nil
}

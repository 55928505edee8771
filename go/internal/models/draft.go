package models

import (
	"time"

	"github.com/google/uuid"
)

type DraftStatus string

const (
	DraftStatusInProgress DraftStatus = "in_progress"
	DraftStatusComplete   DraftStatus = "complete"
)

// Draft is the turn-based selection for one league and race. PickOrder is
// frozen at creation; CurrentPickIndex is a cursor into it.
type Draft struct {
	ID               uuid.UUID   `json:"id"`
	LeagueID         uuid.UUID   `json:"league_id"`
	RaceID           uuid.UUID   `json:"race_id"`
	PickOrder        []uuid.UUID `json:"pick_order"`
	CurrentPickIndex int         `json:"current_pick_index"`
	MirrorPicks      bool        `json:"mirror_picks"`
	Status           DraftStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}

func (d *Draft) IsComplete() bool {
	return d.CurrentPickIndex >= len(d.PickOrder)
}

// TurnUser returns the participant at index, or uuid.Nil when out of range.
func (d *Draft) TurnUser(index int) uuid.UUID {
	if index < 0 || index >= len(d.PickOrder) {
		return uuid.Nil
	}
	return d.PickOrder[index]
}

// IsMirrorSlot reports whether index is its occupant's second turn.
func (d *Draft) IsMirrorSlot(index int) bool {
	if !d.MirrorPicks || index <= 0 || index >= len(d.PickOrder) {
		return false
	}
	user := d.PickOrder[index]
	for _, id := range d.PickOrder[:index] {
		if id == user {
			return true
		}
	}
	return false
}

// SlotOf returns the index userID occupies for the given mirror flag, or -1.
func (d *Draft) SlotOf(userID uuid.UUID, mirror bool) int {
	seen := false
	for i, id := range d.PickOrder {
		if id != userID {
			continue
		}
		if !mirror || seen {
			return i
		}
		seen = true
	}
	return -1
}

// SlotsOf returns every index userID occupies.
func (d *Draft) SlotsOf(userID uuid.UUID) []int {
	var slots []int
	for i, id := range d.PickOrder {
		if id == userID {
			slots = append(slots, i)
		}
	}
	return slots
}

package draft

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// ActivateResult is the activated league and the season drafts created for it.
type ActivateResult struct {
	League *models.League `json:"league"`
	Drafts []models.Draft `json:"drafts"`
}

// PickOrder is a draft's frozen turn order with per-slot detail.
type PickOrder struct {
	DraftID          uuid.UUID   `json:"draft_id"`
	Order            []uuid.UUID `json:"order"`
	Slots            []Slot      `json:"slots"`
	CurrentPickIndex int         `json:"current_pick_index"`
	MirrorPicks      bool        `json:"mirror_picks"`
}

// Slot is one turn of a pick order.
type Slot struct {
	Index    int       `json:"index"`
	UserID   uuid.UUID `json:"user_id"`
	IsMirror bool      `json:"is_mirror"`
	Deadline time.Time `json:"deadline"`
}

// Deadlines are a draft's two turn deadlines and the index where the second
// one takes over.
type Deadlines struct {
	DraftID    uuid.UUID  `json:"draft_id"`
	FirstHalf  time.Time  `json:"first_half"`
	SecondHalf time.Time  `json:"second_half"`
	Threshold  int        `json:"threshold"`
	Current    *time.Time `json:"current,omitempty"`
}

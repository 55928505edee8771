// Package order builds the turn order each race draft is frozen with.
package order

import (
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// Builder randomizes base pick orders. It is safe for concurrent use.
type Builder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder seeds a Builder from the current time.
func NewBuilder() *Builder {
	return NewBuilderWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewBuilderWithSource is used by tests that need a reproducible shuffle.
func NewBuilderWithSource(src rand.Source) *Builder {
	return &Builder{rng: rand.New(src)}
}

// Build returns the base order for a league. A complete manual ranking 1..N
// wins; otherwise members are shuffled, and when teams are given each team is
// shuffled internally, the teams are shuffled, and members are interleaved
// round-robin across teams.
func (b *Builder) Build(members []models.Member, teams []models.TeamRoster) []uuid.UUID {
	if ordered, ok := manualOrder(members); ok {
		return ordered
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(teams) == 0 {
		ids := memberIDs(members)
		b.shuffle(ids)
		return ids
	}
	return b.interleave(members, teams)
}

func (b *Builder) interleave(members []models.Member, teams []models.TeamRoster) []uuid.UUID {
	assigned := make(map[uuid.UUID]bool, len(members))
	groups := make([][]uuid.UUID, 0, len(teams))
	for _, team := range teams {
		group := slices.Clone(team.Members)
		for _, id := range group {
			assigned[id] = true
		}
		b.shuffle(group)
		groups = append(groups, group)
	}
	// Members outside every team draft as their own group.
	for _, m := range members {
		if !assigned[m.UserID] {
			groups = append(groups, []uuid.UUID{m.UserID})
		}
	}
	b.rng.Shuffle(len(groups), func(i, j int) { groups[i], groups[j] = groups[j], groups[i] })

	longest := 0
	for _, g := range groups {
		longest = max(longest, len(g))
	}
	out := make([]uuid.UUID, 0, len(members))
	for round := 0; round < longest; round++ {
		for _, g := range groups {
			if round < len(g) {
				out = append(out, g[round])
			}
		}
	}
	return out
}

func (b *Builder) shuffle(ids []uuid.UUID) {
	b.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// manualOrder uses owner-assigned ranks when every member holds a distinct
// rank in 1..N.
func manualOrder(members []models.Member) ([]uuid.UUID, bool) {
	n := len(members)
	if n == 0 {
		return nil, false
	}
	ordered := make([]uuid.UUID, n)
	filled := make([]bool, n)
	for _, m := range members {
		if m.PickOrder == nil {
			return nil, false
		}
		rank := *m.PickOrder
		if rank < 1 || rank > n || filled[rank-1] {
			return nil, false
		}
		ordered[rank-1] = m.UserID
		filled[rank-1] = true
	}
	return ordered, true
}

func memberIDs(members []models.Member) []uuid.UUID {
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids
}

// Rotate shifts base left by k mod len(base) so the first turn cycles across
// the season.
func Rotate(base []uuid.UUID, k int) []uuid.UUID {
	n := len(base)
	if n == 0 {
		return nil
	}
	shift := ((k % n) + n) % n
	out := make([]uuid.UUID, 0, n)
	out = append(out, base[shift:]...)
	return append(out, base[:shift]...)
}

// Mirror appends the reverse of order, giving every participant a second turn.
func Mirror(order []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, 2*len(order))
	out = append(out, order...)
	for i := len(order) - 1; i >= 0; i-- {
		out = append(out, order[i])
	}
	return out
}

// ForRace is the order frozen into the k-th race draft after activation.
func ForRace(base []uuid.UUID, k int, mirror bool) []uuid.UUID {
	rotated := Rotate(base, k)
	if mirror {
		return Mirror(rotated)
	}
	return rotated
}

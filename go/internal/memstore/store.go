// Package memstore is an in-process implementation of the league, race and
// draft repositories. It backs the memory store mode and the package tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/models"
)

type creditKey struct {
	draftID uuid.UUID
	scopeID uuid.UUID
}

type prefKey struct {
	leagueID uuid.UUID
	userID   uuid.UUID
}

type data struct {
	leagues     map[uuid.UUID]models.League
	members     map[uuid.UUID][]models.Member
	teams       map[uuid.UUID]models.Team
	teamMembers map[uuid.UUID][]uuid.UUID
	races       map[uuid.UUID]models.Race
	drivers     map[int][]models.Driver
	drafts      map[uuid.UUID]models.Draft
	picks       []models.Pick
	credits     map[creditKey]models.BanCredit
	prefs       map[prefKey]models.AutopickPreference
}

func newData() *data {
	return &data{
		leagues:     make(map[uuid.UUID]models.League),
		members:     make(map[uuid.UUID][]models.Member),
		teams:       make(map[uuid.UUID]models.Team),
		teamMembers: make(map[uuid.UUID][]uuid.UUID),
		races:       make(map[uuid.UUID]models.Race),
		drivers:     make(map[int][]models.Driver),
		drafts:      make(map[uuid.UUID]models.Draft),
		credits:     make(map[creditKey]models.BanCredit),
		prefs:       make(map[prefKey]models.AutopickPreference),
	}
}

// clone copies every table. Stored values are replaced on write, never
// mutated in place, so copying the containers is enough.
func (d *data) clone() *data {
	c := newData()
	for k, v := range d.leagues {
		c.leagues[k] = v
	}
	for k, v := range d.members {
		c.members[k] = slices.Clone(v)
	}
	for k, v := range d.teams {
		c.teams[k] = v
	}
	for k, v := range d.teamMembers {
		c.teamMembers[k] = slices.Clone(v)
	}
	for k, v := range d.races {
		c.races[k] = v
	}
	for k, v := range d.drivers {
		c.drivers[k] = slices.Clone(v)
	}
	for k, v := range d.drafts {
		c.drafts[k] = v
	}
	c.picks = slices.Clone(d.picks)
	for k, v := range d.credits {
		c.credits[k] = v
	}
	for k, v := range d.prefs {
		c.prefs[k] = v
	}
	return c
}

type state struct {
	txMu sync.RWMutex
	mu   sync.RWMutex
	data *data
}

// Store holds every table behind one lock. A transaction excludes every
// other caller for its whole run and rolls back by restoring a snapshot, so
// writes made outside it can never be lost to a rollback.
type Store struct {
	*state
	inTx bool
}

func New() *Store {
	return &Store{state: &state{data: newData()}}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(&Store{state: s.state, inTx: true}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lock and rlock return the matching unlock. Outside a transaction, every
// write and every read of the draft tables waits for a running transaction.
// League and race reads only take mu since transactions read them through
// the root store.
func (s *Store) lock() func() {
	if !s.inTx {
		s.txMu.RLock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !s.inTx {
			s.txMu.RUnlock()
		}
	}
}

func (s *Store) rlock() func() {
	if !s.inTx {
		s.txMu.RLock()
	}
	s.mu.RLock()
	return func() {
		s.mu.RUnlock()
		if !s.inTx {
			s.txMu.RUnlock()
		}
	}
}

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, apperr.ErrNotFound)
}

func conflict(what string) error {
	return fmt.Errorf("%w: %s", apperr.ErrConflict, what)
}

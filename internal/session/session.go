// Package session tracks the per-user dialogue state. Sessions are created
// lazily on first contact and live for the life of the process.
package session

import (
	"sync"
	"time"

	"ledgerbot/internal/ledger"
)

// Stage is one point in the data-capture dialogue.
type Stage int

const (
	StageUnlinked Stage = iota
	StageAwaitingLink
	StageIdle
	StageAwaitingCategory
	StageAwaitingName
	StageAwaitingAmount
	StageAwaitingSumPeriod
)

func (s Stage) String() string {
	switch s {
	case StageUnlinked:
		return "unlinked"
	case StageAwaitingLink:
		return "awaiting-link"
	case StageIdle:
		return "idle"
	case StageAwaitingCategory:
		return "awaiting-category"
	case StageAwaitingName:
		return "awaiting-name"
	case StageAwaitingAmount:
		return "awaiting-amount"
	case StageAwaitingSumPeriod:
		return "awaiting-sum-period"
	}
	return "unknown"
}

// Draft is a partially captured record. Fields are filled strictly in the
// order category then name; the amount is parsed and appended in one step.
type Draft struct {
	Category string
	Name     string
}

type Session struct {
	UserID   string
	Ledger   ledger.Ref
	Stage    Stage
	Draft    Draft
	LastSeen time.Time
}

// Store is a concurrent session table with per-user mutual exclusion.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*slot
}

type slot struct {
	mu sync.Mutex
	s  Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*slot)}
}

// Do runs fn while holding the user's lock, creating the session on first
// contact. Two concurrent events for the same user are fully serialized;
// events for different users proceed in parallel.
func (st *Store) Do(userID string, fn func(*Session)) {
	st.mu.Lock()
	sl, ok := st.sessions[userID]
	if !ok {
		sl = &slot{s: Session{UserID: userID, Stage: StageUnlinked}}
		st.sessions[userID] = sl
	}
	st.mu.Unlock()

	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.s.LastSeen = time.Now()
	fn(&sl.s)
}

// Snapshot returns a copy of the user's session, if one exists.
func (st *Store) Snapshot(userID string) (Session, bool) {
	st.mu.Lock()
	sl, ok := st.sessions[userID]
	st.mu.Unlock()
	if !ok {
		return Session{}, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.s, true
}

// Len reports how many sessions exist.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

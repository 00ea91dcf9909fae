package chathub

import (
	"time"

	"github.com/google/uuid"
)

// Session states.
const (
	SessionActive = "active"
	SessionEnded  = "ended"
)

// PairSession is one active 1:1 conversation. Exactly two distinct members;
// a participant belongs to at most one active session.
type PairSession struct {
	ID        string
	MemberA   string
	MemberB   string
	CreatedAt time.Time
	Status    string
}

// PartnerOf returns the other member's id, or "" when the given id is not
// a member.
func (s *PairSession) PartnerOf(id string) string {
	switch id {
	case s.MemberA:
		return s.MemberB
	case s.MemberB:
		return s.MemberA
	}
	return ""
}

// PairTable tracks active pair sessions. Owned by the hub goroutine.
type PairTable struct {
	sessions map[string]*PairSession
	byMember map[string]string // participant id -> session id
}

func NewPairTable() *PairTable {
	return &PairTable{
		sessions: make(map[string]*PairSession),
		byMember: make(map[string]string),
	}
}

// Create links two participants into a fresh active session.
func (t *PairTable) Create(a, b string, now time.Time) *PairSession {
	s := &PairSession{
		ID:        uuid.New().String(),
		MemberA:   a,
		MemberB:   b,
		CreatedAt: now,
		Status:    SessionActive,
	}
	t.sessions[s.ID] = s
	t.byMember[a] = s.ID
	t.byMember[b] = s.ID
	return s
}

// SessionOf returns the active session a participant belongs to, or nil.
func (t *PairTable) SessionOf(participantID string) *PairSession {
	id, ok := t.byMember[participantID]
	if !ok {
		return nil
	}
	return t.sessions[id]
}

// PartnerOf returns the id of the participant's current partner.
func (t *PairTable) PartnerOf(participantID string) (string, bool) {
	s := t.SessionOf(participantID)
	if s == nil {
		return "", false
	}
	return s.PartnerOf(participantID), true
}

// End marks the session ended and unlinks both members. Idempotent: ending
// an already-ended or unknown session returns false and does nothing.
func (t *PairTable) End(sessionID string) bool {
	s, ok := t.sessions[sessionID]
	if !ok || s.Status != SessionActive {
		return false
	}
	s.Status = SessionEnded
	delete(t.byMember, s.MemberA)
	delete(t.byMember, s.MemberB)
	delete(t.sessions, sessionID)
	return true
}

// ActiveCount returns the number of live sessions.
func (t *PairTable) ActiveCount() int {
	return len(t.sessions)
}

package chathub

import (
	"time"

	"cloudchat/backend/internal/models"
)

// Matcher finds a compatible counterpart for a searching participant.
// It runs on the hub goroutine, so the scan-and-remove-both sequence is
// atomic with respect to concurrent searches.
type Matcher struct {
	registry *Registry
	queue    *FilterQueue
	pairs    *PairTable
}

func NewMatcher(registry *Registry, queue *FilterQueue, pairs *PairTable) *Matcher {
	return &Matcher{registry: registry, queue: queue, pairs: pairs}
}

// FindMatch scans the bucket of the participant's requested age group in
// FIFO order (oldest-waiting-first) and returns the created session, or
// nil when nobody compatible is waiting. On success both queue entries are
// removed and both participants transition to paired.
func (m *Matcher) FindMatch(p *models.Participant, filter models.SearchFilter, now time.Time) *PairSession {
	// Stale entries are collected during the scan and dropped only after
	// it: Dequeue shifts the live bucket slice, and removing mid-range
	// would skip the entry right behind the stale one.
	var stale []string
	var match *models.Participant

	for _, entry := range m.queue.Entries(filter.AgeGroup) {
		if entry.ParticipantID == p.ID {
			continue
		}

		cand := m.registry.Get(entry.ParticipantID)
		if cand == nil {
			// Left behind by a racing disconnect.
			stale = append(stale, entry.ParticipantID)
			continue
		}

		if compatible(p, filter, cand, entry.Filter) {
			match = cand
			break
		}
	}

	for _, id := range stale {
		m.queue.Dequeue(id)
	}

	if match == nil {
		return nil
	}

	m.queue.Dequeue(p.ID)
	m.queue.Dequeue(match.ID)

	session := m.pairs.Create(p.ID, match.ID, now)
	p.Status = models.StatusPaired
	p.PairID = session.ID
	match.Status = models.StatusPaired
	match.PairID = session.ID
	return session
}

// compatible tests mutual acceptance: each side's target gender must accept
// the other's actual gender (or be "any"), and the derived age groups must
// be equal. Declaring a foreign bracket in the filter therefore never
// produces a cross-bracket match.
func compatible(a *models.Participant, af models.SearchFilter, b *models.Participant, bf models.SearchFilter) bool {
	if !af.TargetGender.Accepts(b.Profile.Gender) {
		return false
	}
	if !bf.TargetGender.Accepts(a.Profile.Gender) {
		return false
	}
	return a.AgeGroup() == b.AgeGroup()
}

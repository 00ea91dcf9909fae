package chathub

import (
	"time"

	"cloudchat/backend/internal/models"
)

// WaitingEntry is one searching participant inside a queue bucket.
type WaitingEntry struct {
	ParticipantID string
	Filter        models.SearchFilter
	EnqueuedAt    time.Time
}

// FilterQueue holds searching participants bucketed by the age group they
// search in. Buckets are FIFO slices; oldest entry first. Owned by the hub
// goroutine.
type FilterQueue struct {
	buckets map[models.AgeGroup][]*WaitingEntry
	// group remembers which bucket a participant sits in, so dequeue and
	// the one-bucket invariant stay O(1) lookups.
	group map[string]models.AgeGroup
}

func NewFilterQueue() *FilterQueue {
	return &FilterQueue{
		buckets: make(map[models.AgeGroup][]*WaitingEntry),
		group:   make(map[string]models.AgeGroup),
	}
}

// Enqueue appends the participant to the tail of the filter's bucket.
// A participant already queued in the same bucket gets its filter updated
// in place, keeping its original position (no queue jumping). If the
// requested age group changed, the entry moves to the tail of the new
// bucket.
func (q *FilterQueue) Enqueue(id string, filter models.SearchFilter, now time.Time) {
	if prev, ok := q.group[id]; ok {
		if prev == filter.AgeGroup {
			for _, e := range q.buckets[prev] {
				if e.ParticipantID == id {
					e.Filter = filter
					return
				}
			}
		}
		q.Dequeue(id)
	}

	q.buckets[filter.AgeGroup] = append(q.buckets[filter.AgeGroup], &WaitingEntry{
		ParticipantID: id,
		Filter:        filter,
		EnqueuedAt:    now,
	})
	q.group[id] = filter.AgeGroup
}

// Dequeue removes the participant's entry, preserving the relative order
// of everything else. Returns false when the participant was not queued.
func (q *FilterQueue) Dequeue(id string) bool {
	g, ok := q.group[id]
	if !ok {
		return false
	}
	bucket := q.buckets[g]
	for i, e := range bucket {
		if e.ParticipantID == id {
			q.buckets[g] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	delete(q.group, id)
	return true
}

// Contains reports whether the participant is queued anywhere.
func (q *FilterQueue) Contains(id string) bool {
	_, ok := q.group[id]
	return ok
}

// Entries returns the bucket for a group in FIFO order. The slice is the
// live bucket; callers must not retain it across mutations.
func (q *FilterQueue) Entries(group models.AgeGroup) []*WaitingEntry {
	return q.buckets[group]
}

// Len returns the total number of queued participants.
func (q *FilterQueue) Len() int {
	return len(q.group)
}

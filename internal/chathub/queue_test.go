package chathub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cloudchat/backend/internal/chathub"
	"cloudchat/backend/internal/models"
)

func filter(target models.TargetGender, group models.AgeGroup) models.SearchFilter {
	return models.SearchFilter{TargetGender: target, AgeGroup: group}
}

func bucketIDs(q *chathub.FilterQueue, group models.AgeGroup) []string {
	var ids []string
	for _, e := range q.Entries(group) {
		ids = append(ids, e.ParticipantID)
	}
	return ids
}

func TestFilterQueue_FIFOOrder(t *testing.T) {
	q := chathub.NewFilterQueue()
	now := time.Now()

	q.Enqueue("a", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("b", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("c", filter(models.TargetAny, models.AgeGroup18to26), now)

	assert.Equal(t, []string{"a", "b", "c"}, bucketIDs(q, models.AgeGroup18to26))
	assert.Equal(t, 3, q.Len())
}

// TestFilterQueue_ReEnqueueKeepsPosition verifies that a repeated search is
// a filter update, not a queue jump.
func TestFilterQueue_ReEnqueueKeepsPosition(t *testing.T) {
	q := chathub.NewFilterQueue()
	now := time.Now()

	q.Enqueue("a", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("b", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("a", filter(models.TargetGender("female"), models.AgeGroup18to26), now)

	assert.Equal(t, []string{"a", "b"}, bucketIDs(q, models.AgeGroup18to26))
	assert.Equal(t, models.TargetGender("female"), q.Entries(models.AgeGroup18to26)[0].Filter.TargetGender)
	assert.Equal(t, 2, q.Len())
}

// TestFilterQueue_ReEnqueueOtherBucket: changing the requested age group
// moves the entry to the tail of the new bucket.
func TestFilterQueue_ReEnqueueOtherBucket(t *testing.T) {
	q := chathub.NewFilterQueue()
	now := time.Now()

	q.Enqueue("a", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("a", filter(models.TargetAny, models.AgeGroup26to35), now)

	assert.Empty(t, bucketIDs(q, models.AgeGroup18to26))
	assert.Equal(t, []string{"a"}, bucketIDs(q, models.AgeGroup26to35))
	assert.Equal(t, 1, q.Len(), "participant must never appear in two buckets")
}

func TestFilterQueue_DequeuePreservesOrder(t *testing.T) {
	q := chathub.NewFilterQueue()
	now := time.Now()

	q.Enqueue("a", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("b", filter(models.TargetAny, models.AgeGroup18to26), now)
	q.Enqueue("c", filter(models.TargetAny, models.AgeGroup18to26), now)

	assert.True(t, q.Dequeue("b"))
	assert.Equal(t, []string{"a", "c"}, bucketIDs(q, models.AgeGroup18to26))
	assert.False(t, q.Contains("b"))
}

func TestFilterQueue_DequeueUnknown(t *testing.T) {
	q := chathub.NewFilterQueue()
	assert.False(t, q.Dequeue("ghost"))
	assert.Equal(t, 0, q.Len())
}

package chathub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cloudchat/backend/internal/chathub"
	"cloudchat/backend/internal/models"
)

type matcherFixture struct {
	registry *chathub.Registry
	queue    *chathub.FilterQueue
	pairs    *chathub.PairTable
	matcher  *chathub.Matcher
}

func newMatcherFixture() *matcherFixture {
	registry := chathub.NewRegistry()
	queue := chathub.NewFilterQueue()
	pairs := chathub.NewPairTable()
	return &matcherFixture{
		registry: registry,
		queue:    queue,
		pairs:    pairs,
		matcher:  chathub.NewMatcher(registry, queue, pairs),
	}
}

// join registers a participant and puts it in the queue, the way the hub
// does on a search event.
func (f *matcherFixture) join(t *testing.T, id, name string, age int, gender models.Gender, fl models.SearchFilter) *models.Participant {
	t.Helper()
	p, err := f.registry.Register(id, models.Profile{Name: name, Age: age, Gender: gender})
	assert.NoError(t, err)
	p.Status = models.StatusSearching
	p.Filter = &fl
	f.queue.Enqueue(id, fl, time.Now())
	return p
}

func TestMatcher_MutualMatch(t *testing.T) {
	f := newMatcherFixture()

	aliceFilter := filter(models.TargetGender("male"), models.AgeGroup18to26)
	bobFilter := filter(models.TargetGender("female"), models.AgeGroup18to26)

	alice := f.join(t, "alice", "Alice", 20, models.GenderFemale, aliceFilter)
	session := f.matcher.FindMatch(alice, aliceFilter, time.Now())
	assert.Nil(t, session, "nobody else is waiting yet")
	assert.True(t, f.queue.Contains("alice"), "unmatched searcher stays enqueued")

	bob := f.join(t, "bob", "Bob", 22, models.GenderMale, bobFilter)
	session = f.matcher.FindMatch(bob, bobFilter, time.Now())

	if assert.NotNil(t, session) {
		assert.NotEqual(t, session.MemberA, session.MemberB)
		assert.Equal(t, "bob", session.PartnerOf("alice"))
		assert.Equal(t, "alice", session.PartnerOf("bob"))
	}

	assert.Equal(t, models.StatusPaired, alice.Status)
	assert.Equal(t, models.StatusPaired, bob.Status)
	assert.Equal(t, session.ID, alice.PairID)
	assert.Equal(t, session.ID, bob.PairID)

	assert.False(t, f.queue.Contains("alice"))
	assert.False(t, f.queue.Contains("bob"))
	assert.Equal(t, 1, f.pairs.ActiveCount())
}

func TestMatcher_NoSelfMatch(t *testing.T) {
	f := newMatcherFixture()

	fl := filter(models.TargetAny, models.AgeGroup18to26)
	solo := f.join(t, "solo", "Solo", 20, models.GenderOther, fl)

	session := f.matcher.FindMatch(solo, fl, time.Now())

	assert.Nil(t, session)
	assert.True(t, f.queue.Contains("solo"))
	assert.Equal(t, 0, f.pairs.ActiveCount())
}

// TestMatcher_OneWayRejection: compatibility must hold in both directions.
func TestMatcher_OneWayRejection(t *testing.T) {
	f := newMatcherFixture()

	// Alice accepts anyone, but Bob only wants male partners; Alice is
	// female, so the pair is off.
	aliceFilter := filter(models.TargetAny, models.AgeGroup18to26)
	bobFilter := filter(models.TargetGender("male"), models.AgeGroup18to26)

	f.join(t, "bob", "Bob", 22, models.GenderMale, bobFilter)
	alice := f.join(t, "alice", "Alice", 20, models.GenderFemale, aliceFilter)

	session := f.matcher.FindMatch(alice, aliceFilter, time.Now())

	assert.Nil(t, session)
	assert.True(t, f.queue.Contains("alice"))
	assert.True(t, f.queue.Contains("bob"))
}

// TestMatcher_DifferentRequestedGroups: searchers waiting in different
// buckets never see each other.
func TestMatcher_DifferentRequestedGroups(t *testing.T) {
	f := newMatcherFixture()

	aFilter := filter(models.TargetAny, models.AgeGroup26to35)
	bFilter := filter(models.TargetAny, models.AgeGroup18to26)

	f.join(t, "a", "Ann", 28, models.GenderFemale, aFilter)
	b := f.join(t, "b", "Ben", 22, models.GenderMale, bFilter)

	assert.Nil(t, f.matcher.FindMatch(b, bFilter, time.Now()))
}

// TestMatcher_DerivedGroupMustMatch: declaring a bracket you are not in
// cannot produce a cross-bracket match.
func TestMatcher_DerivedGroupMustMatch(t *testing.T) {
	f := newMatcherFixture()

	fl := filter(models.TargetAny, models.AgeGroup18to26)

	// Ben is 30, so his derived group is 26-35 even though he requested
	// the 18-26 bucket.
	f.join(t, "ben", "Ben", 30, models.GenderMale, fl)
	ann := f.join(t, "ann", "Ann", 22, models.GenderFemale, fl)

	assert.Nil(t, f.matcher.FindMatch(ann, fl, time.Now()))
}

// TestMatcher_OldestWaitingWins: the first compatible entry in FIFO order
// is chosen.
func TestMatcher_OldestWaitingWins(t *testing.T) {
	f := newMatcherFixture()

	fl := filter(models.TargetAny, models.AgeGroup18to26)

	f.join(t, "first", "First", 20, models.GenderMale, fl)
	f.join(t, "second", "Second", 21, models.GenderMale, fl)
	newest := f.join(t, "newest", "Newest", 22, models.GenderFemale, fl)

	session := f.matcher.FindMatch(newest, fl, time.Now())

	if assert.NotNil(t, session) {
		assert.Equal(t, "first", session.PartnerOf("newest"))
	}
	assert.True(t, f.queue.Contains("second"), "the younger entry keeps waiting")
}

// TestMatcher_SkipsStaleEntries: a queue entry whose participant is gone
// from the registry is dropped during the scan.
func TestMatcher_SkipsStaleEntries(t *testing.T) {
	f := newMatcherFixture()

	fl := filter(models.TargetAny, models.AgeGroup18to26)

	f.join(t, "ghost", "Ghost", 20, models.GenderMale, fl)
	f.registry.Remove("ghost") // disconnected, entry left behind

	ann := f.join(t, "ann", "Ann", 22, models.GenderFemale, fl)
	session := f.matcher.FindMatch(ann, fl, time.Now())

	assert.Nil(t, session)
	assert.False(t, f.queue.Contains("ghost"), "stale entry is cleaned up")
	assert.True(t, f.queue.Contains("ann"))
}

// TestMatcher_StaleEntryDoesNotHideFollowers: dropping a stale entry must
// not skip the waiter right behind it.
func TestMatcher_StaleEntryDoesNotHideFollowers(t *testing.T) {
	f := newMatcherFixture()

	fl := filter(models.TargetAny, models.AgeGroup18to26)

	f.join(t, "ghost", "Ghost", 20, models.GenderMale, fl)
	f.registry.Remove("ghost")
	f.join(t, "bob", "Bob", 21, models.GenderMale, fl)
	f.join(t, "carol", "Carol", 22, models.GenderFemale, fl)

	ann := f.join(t, "ann", "Ann", 23, models.GenderFemale, fl)
	session := f.matcher.FindMatch(ann, fl, time.Now())

	if assert.NotNil(t, session) {
		assert.Equal(t, "bob", session.PartnerOf("ann"))
	}
	assert.False(t, f.queue.Contains("ghost"))
	assert.True(t, f.queue.Contains("carol"), "later waiters are untouched")
}

// TestMatcher_StaleEntryKeepsFIFOOrder: the oldest live waiter still wins
// when a stale entry precedes it.
func TestMatcher_StaleEntryKeepsFIFOOrder(t *testing.T) {
	f := newMatcherFixture()

	fl := filter(models.TargetAny, models.AgeGroup18to26)

	f.join(t, "ghost", "Ghost", 20, models.GenderMale, fl)
	f.registry.Remove("ghost")
	f.join(t, "first", "First", 20, models.GenderMale, fl)
	f.join(t, "second", "Second", 21, models.GenderMale, fl)

	newest := f.join(t, "newest", "Newest", 22, models.GenderFemale, fl)
	session := f.matcher.FindMatch(newest, fl, time.Now())

	if assert.NotNil(t, session) {
		assert.Equal(t, "first", session.PartnerOf("newest"))
	}
	assert.True(t, f.queue.Contains("second"))
	assert.False(t, f.queue.Contains("ghost"))
}

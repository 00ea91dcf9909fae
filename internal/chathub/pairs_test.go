package chathub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cloudchat/backend/internal/chathub"
)

func TestPairTable_CreateAndLookup(t *testing.T) {
	pairs := chathub.NewPairTable()

	s := pairs.Create("a", "b", time.Now())

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, chathub.SessionActive, s.Status)
	assert.Equal(t, "b", s.PartnerOf("a"))
	assert.Equal(t, "a", s.PartnerOf("b"))
	assert.Equal(t, "", s.PartnerOf("stranger"))

	partner, ok := pairs.PartnerOf("a")
	assert.True(t, ok)
	assert.Equal(t, "b", partner)

	assert.Same(t, s, pairs.SessionOf("a"))
	assert.Same(t, s, pairs.SessionOf("b"))
	assert.Equal(t, 1, pairs.ActiveCount())
}

func TestPairTable_EndIsIdempotent(t *testing.T) {
	pairs := chathub.NewPairTable()
	s := pairs.Create("a", "b", time.Now())

	assert.True(t, pairs.End(s.ID), "first end changes state")
	assert.False(t, pairs.End(s.ID), "second end is a no-op")
	assert.False(t, pairs.End("no-such-session"))

	assert.Equal(t, chathub.SessionEnded, s.Status)
	assert.Nil(t, pairs.SessionOf("a"))
	assert.Nil(t, pairs.SessionOf("b"))
	assert.Equal(t, 0, pairs.ActiveCount())
}

func TestPairTable_MemberInOneSessionAtATime(t *testing.T) {
	pairs := chathub.NewPairTable()

	first := pairs.Create("a", "b", time.Now())
	pairs.End(first.ID)

	second := pairs.Create("a", "c", time.Now())

	assert.Same(t, second, pairs.SessionOf("a"))
	partner, ok := pairs.PartnerOf("a")
	assert.True(t, ok)
	assert.Equal(t, "c", partner)
	assert.Equal(t, 1, pairs.ActiveCount())
}

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChallengeStartsUnverified(t *testing.T) {
	now := time.Now()
	c := NewChallenge("123456", now)

	assert.Equal(t, "123456", c.State)
	assert.Equal(t, now, c.CreatedAt)
	assert.False(t, c.Verified)
	assert.Equal(t, false, c.Attributes[AttrVerified])
	assert.Empty(t, c.DID())
}

func TestMarkVerifiedMergesAttributes(t *testing.T) {
	c := NewChallenge("123456", time.Now())

	c.MarkVerified("did:example:alice", Attributes{
		"PublicKey": "04abcd",
		"nickname":  "alice",
	})

	assert.True(t, c.Verified)
	assert.Equal(t, "did:example:alice", c.DID())
	assert.Equal(t, true, c.Attributes[AttrVerified])
	assert.Equal(t, "alice", c.Attributes["nickname"])
	assert.Equal(t, "04abcd", c.Attributes["PublicKey"])
}

func TestMarkVerifiedLastWriterWins(t *testing.T) {
	c := NewChallenge("123456", time.Now())

	// An asserted payload may reuse bookkeeping keys; incoming data wins
	c.MarkVerified("did:example:alice", Attributes{
		AttrDID: "did:example:mallory",
	})

	assert.Equal(t, "did:example:mallory", c.DID())
}

func TestMarkVerifiedTwiceIsIdempotent(t *testing.T) {
	c := NewChallenge("123456", time.Now())

	asserted := Attributes{"nickname": "alice", "email": "a@example.com"}
	c.MarkVerified("did:example:alice", asserted)
	first := c.Attributes.Clone()

	c.MarkVerified("did:example:alice", asserted)

	assert.Equal(t, first, c.Attributes)
}

func TestFresh(t *testing.T) {
	now := time.Now()
	c := NewChallenge("123456", now)

	assert.True(t, c.Fresh(now, time.Minute))
	assert.True(t, c.Fresh(now.Add(time.Minute), time.Minute))
	assert.False(t, c.Fresh(now.Add(time.Minute+time.Second), time.Minute))
}

func TestCloneIsolatesAttributes(t *testing.T) {
	c := NewChallenge("123456", time.Now())
	clone := c.Clone()

	clone.Attributes["nickname"] = "bob"
	clone.Verified = true

	require.NotContains(t, c.Attributes, "nickname")
	assert.False(t, c.Verified)
}

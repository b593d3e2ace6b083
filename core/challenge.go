package core

import "time"

// Attribute keys the callback path maintains on every verified challenge.
// Asserted wallet data is merged last and may overwrite them.
const (
	AttrDID      = "did"
	AttrVerified = "verified"
	AttrNickname = "nickname"
	AttrEmail    = "email"
)

// Attributes is the schema-less attribute bag carried by a challenge:
// string keys mapped to string, bool or nested-map values as decoded
// from the wallet's JSON payload.
type Attributes map[string]any

// Clone returns a shallow-per-key copy so store snapshots never alias
// a caller's map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge writes incoming over existing, last-writer-wins.
func (a Attributes) Merge(incoming Attributes) {
	for k, v := range incoming {
		a[k] = v
	}
}

// Challenge represents one issued authentication attempt
type Challenge struct {
	State      string     `json:"state"`      // Random token identifying the challenge end-to-end
	CreatedAt  time.Time  `json:"created_at"` // Set at insertion, never updated
	Verified   bool       `json:"verified"`   // Flipped false->true exactly once by the callback path
	Attributes Attributes `json:"attributes"`
}

// NewChallenge creates an unverified challenge record.
func NewChallenge(state string, now time.Time) *Challenge {
	return &Challenge{
		State:     state,
		CreatedAt: now,
		Attributes: Attributes{
			AttrVerified: false,
		},
	}
}

// Fresh reports whether the record is still inside the given window.
// Freshness is derived at read time, never stored.
func (c *Challenge) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(c.CreatedAt) <= window
}

// MarkVerified flips the record to verified and merges the asserted
// attributes over the existing ones. The asserted DID is recorded under
// the "did" key before the merge, so a wallet payload that reuses that
// key wins, matching the last-writer-wins contract.
func (c *Challenge) MarkVerified(did string, asserted Attributes) {
	c.Verified = true
	if c.Attributes == nil {
		c.Attributes = Attributes{}
	}
	c.Attributes[AttrDID] = did
	c.Attributes[AttrVerified] = true
	c.Attributes.Merge(asserted)
}

// DID returns the asserted identity key, or "" when the record has not
// been verified yet.
func (c *Challenge) DID() string {
	did, _ := c.Attributes[AttrDID].(string)
	return did
}

// Clone returns a copy safe to hand across goroutines.
func (c *Challenge) Clone() *Challenge {
	out := *c
	out.Attributes = c.Attributes.Clone()
	return &out
}

// Account is a known identity resolved by its DID.
type Account struct {
	DID      string
	Nickname string
	Email    string
}

// Session represents an authenticated user session established by the
// completion step.
type Session struct {
	ID            string    // Unique session identifier
	DID           string    // Identity the wallet asserted
	IssuedAt      time.Time // When the session was created
	AccessExpiry  time.Time // When the access capability expires
	RefreshExpiry time.Time // When the refresh capability expires
	RefreshID     string    // Unique identifier for the refresh token
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/talaria-id/talaria/core"
)

const (
	sessionName        = "talaria_auth"
	keyPendingState    = "pending_state"
	keyResolvedPayload = "resolved_challenge"
)

// SessionBridge carries the per-caller protocol state between the issuance,
// poll and completion steps: the outstanding state token and, once polling
// succeeds, the resolved challenge snapshot. Both are transient and cleared
// on completion.
type SessionBridge struct {
	store sessions.Store
}

// NewSessionBridge creates a cookie-backed session bridge
func NewSessionBridge(secret []byte) *SessionBridge {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionBridge{store: store}
}

// PendingState returns the outstanding state token, or "" when the caller
// never initiated a challenge.
func (b *SessionBridge) PendingState(r *http.Request) string {
	session, err := b.store.Get(r, sessionName)
	if err != nil {
		return ""
	}

	state, _ := session.Values[keyPendingState].(string)
	return state
}

// SetPendingState stores the state token issued for this caller.
func (b *SessionBridge) SetPendingState(w http.ResponseWriter, r *http.Request, state string) error {
	session, _ := b.store.Get(r, sessionName)
	session.Values[keyPendingState] = state
	delete(session.Values, keyResolvedPayload)

	return session.Save(r, w)
}

// ResolvedChallenge returns the challenge snapshot stored by a successful
// poll, or core.ErrNoPendingChallenge.
func (b *SessionBridge) ResolvedChallenge(r *http.Request) (*core.Challenge, error) {
	session, err := b.store.Get(r, sessionName)
	if err != nil {
		return nil, core.ErrNoPendingChallenge
	}

	payload, ok := session.Values[keyResolvedPayload].(string)
	if !ok || payload == "" {
		return nil, core.ErrNoPendingChallenge
	}

	var challenge core.Challenge
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		return nil, core.ErrNoPendingChallenge
	}

	return &challenge, nil
}

// SetResolvedChallenge refreshes the session's challenge snapshot.
func (b *SessionBridge) SetResolvedChallenge(w http.ResponseWriter, r *http.Request, challenge *core.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	session, _ := b.store.Get(r, sessionName)
	session.Values[keyResolvedPayload] = string(payload)

	return session.Save(r, w)
}

// Clear drops the pending state and the snapshot once the flow completes
// or is abandoned.
func (b *SessionBridge) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := b.store.Get(r, sessionName)
	delete(session.Values, keyPendingState)
	delete(session.Values, keyResolvedPayload)
	session.Options.MaxAge = -1

	return session.Save(r, w)
}

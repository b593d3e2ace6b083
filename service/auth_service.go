package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/talaria-id/talaria/core"
	"github.com/talaria-id/talaria/internal/ecc"
	"github.com/talaria-id/talaria/ports"
)

// Redirect targets handed back by Poll, depending on whether the asserted
// DID already belongs to a known account.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
)

// AppIdentity is the static application identity embedded in every scan
// request.
type AppIdentity struct {
	ID          string
	DID         string
	Name        string
	Description string
	CallbackURL string
	RequestInfo []string
}

// Windows holds the freshness windows of the protocol. The housekeeping
// window must be the most lenient; the default is twice the verification
// window.
type Windows struct {
	Verify time.Duration
	Poll   time.Duration
	Purge  time.Duration
}

func (w Windows) withDefaults() Windows {
	if w.Verify == 0 {
		w.Verify = time.Minute
	}
	if w.Poll == 0 {
		w.Poll = time.Minute
	}
	if w.Purge == 0 {
		w.Purge = 2 * w.Verify
	}
	return w
}

// PollResult is the routing decision returned by a resolved poll.
type PollResult struct {
	Redirect  string
	Challenge *core.Challenge
}

// AuthService handles the challenge/response business logic
type AuthService struct {
	store     ports.ChallengeStore
	accounts  ports.AccountDirectory
	eventPub  ports.EventPublisher
	tokenizer ports.Tokenizer

	signKey *ecdsa.PrivateKey
	app     AppIdentity
	windows Windows

	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

// NewAuthService creates a new authentication service. Zero-valued windows
// fall back to the protocol defaults.
func NewAuthService(
	store ports.ChallengeStore,
	accounts ports.AccountDirectory,
	eventPub ports.EventPublisher,
	tokenizer ports.Tokenizer,
	signKey *ecdsa.PrivateKey,
	app AppIdentity,
	windows Windows,
) *AuthService {
	return &AuthService{
		store:      store,
		accounts:   accounts,
		eventPub:   eventPub,
		tokenizer:  tokenizer,
		signKey:    signKey,
		app:        app,
		windows:    windows.withDefaults(),
		accessTTL:  5 * time.Minute,
		refreshTTL: 5 * 24 * time.Hour, // 5 days
		now:        time.Now,
	}
}

// Issue creates a new challenge: a random state token, a signed scan
// request for the wallet, and a pending record in the store. Records older
// than the housekeeping window are purged opportunistically on the way out.
func (s *AuthService) Issue(ctx context.Context) (*core.ScanRequest, string, error) {
	digest := ecc.Digest(s.app.ID)
	signature, err := ecc.Sign(digest, s.signKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign app identity: %w", err)
	}

	var state string
	for attempt := 0; attempt < 2; attempt++ {
		state, err = newState()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate state token: %w", err)
		}

		err = s.store.Insert(ctx, core.NewChallenge(state, s.now()))
		if err == nil {
			break
		}
		if !errors.Is(err, core.ErrStateCollision) {
			return nil, "", fmt.Errorf("failed to persist challenge: %w", err)
		}
	}
	if err != nil {
		// Collision twice in a row: something is wrong with the entropy
		// source, surface it instead of looping.
		return nil, "", fmt.Errorf("failed to persist challenge: %w", err)
	}

	request := &core.ScanRequest{
		CallbackURL:  s.app.CallbackURL,
		Description:  s.app.Description,
		AppID:        s.app.ID,
		PublicKey:    ecc.PublicKeyHex(&s.signKey.PublicKey),
		Signature:    signature,
		DID:          s.app.DID,
		RandomNumber: state,
		AppName:      s.app.Name,
		RequestInfo:  s.app.RequestInfo,
	}

	// Housekeeping is best effort, a failed purge must not fail the issuance
	if err := s.store.PurgeOlderThan(ctx, s.windows.Purge); err != nil {
		fmt.Printf("Warning: failed to purge expired challenges: %v\n", err)
	}

	return request, state, nil
}

// HandleCallback processes the wallet's signed assertion. Every failure
// mode (malformed payload, bad signature, unknown or stale state) surfaces
// to the agent as the same unauthorized outcome so it cannot probe which
// one it hit.
func (s *AuthService) HandleCallback(ctx context.Context, rawData string, signatureHex string) error {
	var asserted core.Attributes
	if err := json.Unmarshal([]byte(rawData), &asserted); err != nil {
		return core.ErrSignatureInvalid
	}

	publicKey, _ := asserted["PublicKey"].(string)
	did, _ := asserted["DID"].(string)
	state, _ := asserted["RandomNumber"].(string)
	if publicKey == "" || did == "" || state == "" {
		return core.ErrSignatureInvalid
	}

	rHex, sHex, ok := ecc.SplitSignature(signatureHex)
	if !ok {
		return core.ErrSignatureInvalid
	}

	// The digest covers the exact bytes received, not a re-serialization
	digest := ecc.Digest(rawData)
	if !ecc.Verify(digest, rHex, sHex, publicKey) {
		return core.ErrSignatureInvalid
	}

	// Lookup failures keep their own sentinels for logs and tests; the
	// transport collapses them with signature failures into one 401.
	record, err := s.store.FindByState(ctx, state)
	if err != nil {
		return core.ErrChallengeNotFound
	}
	if !record.Fresh(s.now(), s.windows.Verify) {
		return core.ErrChallengeExpired
	}

	record.MarkVerified(did, asserted)

	if err := s.store.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to persist verification: %w", err)
	}

	if err := s.eventPub.PublishChallengeVerified(ctx, did, state); err != nil {
		// The record is already verified, which is the critical part
		fmt.Printf("Warning: failed to publish verified event: %v\n", err)
	}

	return nil
}

// Poll checks whether the caller's pending challenge has been verified.
// It is safe to call repeatedly; the only effect of a hit is the snapshot
// returned for the session bridge.
func (s *AuthService) Poll(ctx context.Context, pendingState string) (*PollResult, error) {
	if pendingState == "" {
		return nil, core.ErrNoPendingChallenge
	}

	record, err := s.store.FindVerifiedFresh(ctx, pendingState, s.windows.Poll)
	if err != nil {
		return nil, core.ErrChallengeNotFound
	}

	did := record.DID()
	if did == "" {
		return nil, core.ErrChallengeNotFound
	}

	redirect := RegisterPath
	_, err = s.accounts.FindByDID(ctx, did)
	switch {
	case err == nil:
		redirect = LoginPath
	case errors.Is(err, core.ErrAccountNotFound):
		// Unknown identity routes to registration
	default:
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	return &PollResult{
		Redirect:  redirect,
		Challenge: record,
	}, nil
}

// CompleteLogin consumes a resolved challenge for a known identity,
// deletes the record and establishes an authenticated session.
func (s *AuthService) CompleteLogin(ctx context.Context, challenge *core.Challenge) (string, string, error) {
	did := challenge.DID()
	if did == "" {
		return "", "", core.ErrNoPendingChallenge
	}

	if _, err := s.accounts.FindByDID(ctx, did); err != nil {
		return "", "", err
	}

	if err := s.store.DeleteByState(ctx, challenge.State); err != nil {
		return "", "", fmt.Errorf("failed to consume challenge: %w", err)
	}

	return s.createTokens(did)
}

// CompleteRegister consumes a resolved challenge for an unknown identity,
// creates the account from the asserted attributes, deletes the record and
// establishes an authenticated session.
func (s *AuthService) CompleteRegister(ctx context.Context, challenge *core.Challenge) (string, string, error) {
	did := challenge.DID()
	if did == "" {
		return "", "", core.ErrNoPendingChallenge
	}

	nickname, _ := challenge.Attributes[core.AttrNickname].(string)
	email, _ := challenge.Attributes[core.AttrEmail].(string)

	account := &core.Account{
		DID:      did,
		Nickname: nickname,
		Email:    email,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return "", "", err
	}

	if err := s.store.DeleteByState(ctx, challenge.State); err != nil {
		return "", "", fmt.Errorf("failed to consume challenge: %w", err)
	}

	return s.createTokens(did)
}

// Refresh redeems a refresh token for a new access/refresh pair. The new
// pair carries a fresh refresh ID, so clients rotate on every redemption.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	session, err := s.tokenizer.RefreshTokenToSession(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}

	if s.now().After(session.RefreshExpiry) {
		return "", "", core.ErrTokenExpired
	}

	return s.createTokens(session.DID)
}

// ValidateAccessToken parses and validates an access token for the
// protected API surface.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Session, error) {
	session, err := s.tokenizer.AccessTokenToSession(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	if s.now().After(session.AccessExpiry) {
		return nil, core.ErrTokenExpired
	}

	return session, nil
}

func (s *AuthService) createTokens(did string) (string, string, error) {
	now := s.now()
	session := &core.Session{
		ID:            uuid.New().String(),
		DID:           did,
		IssuedAt:      now,
		AccessExpiry:  now.Add(s.accessTTL),
		RefreshExpiry: now.Add(s.refreshTTL),
		RefreshID:     uuid.New().String(),
	}

	accessToken, err := s.tokenizer.SessionToAccessToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokenizer.SessionToRefreshToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

// newState draws a 128-bit random value and renders it as a decimal string.
// The token identifies the challenge end-to-end; the width makes guessing
// one inside the verification window infeasible.
func newState() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return new(big.Int).SetBytes(buf[:]).String(), nil
}

package core

import "errors"

var (
	ErrStateCollision     = errors.New("state token already exists")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrChallengeExpired   = errors.New("challenge has expired")
	ErrSignatureInvalid   = errors.New("invalid signature")
	ErrNoPendingChallenge = errors.New("no pending challenge in session")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrTokenExpired       = errors.New("token has expired")
	ErrInvalidToken       = errors.New("invalid token")
)

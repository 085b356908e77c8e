// Package session maps opaque bearer tokens to account identities. The wallet
// API resolves the token before calling the ledger, so the ledger only ever
// sees an explicit caller ID.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for unknown, revoked or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store issues and resolves session tokens.
type Store interface {
	Create(ctx context.Context, accountID int64) (*Session, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

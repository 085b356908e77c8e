package handler

import (
	"encoding/json"
	"time"

	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/history"
	"github.com/paywallet-ledger/internal/platform/session"
)

// SignUpRequest represents a request to register a new account
type SignUpRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
}

// SignInRequest represents a request to open a session
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateTransferRequest represents a request to move money to another account.
// Amount is kept raw so that both JSON numbers and numeric strings are
// accepted and anything else is reported as an invalid amount.
type CreateTransferRequest struct {
	ReceiverID int64           `json:"receiver_id" binding:"required,gt=0"`
	Amount     json.RawMessage `json:"amount"`
	Note       *string         `json:"note" binding:"omitempty,max=280"`
	Type       string          `json:"type" binding:"omitempty,txtype"`
}

// MovementRequest represents a recharge or a bill payment
type MovementRequest struct {
	Amount json.RawMessage `json:"amount"`
	Note   *string         `json:"note" binding:"omitempty,max=280"`
}

// AccountResponse is the caller's own account, balance included
type AccountResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Initials  string `json:"initials"`
	Email     string `json:"email"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// RosterEntry is another account as listed in the recipient picker
type RosterEntry struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Initials  string `json:"initials"`
	Email     string `json:"email"`
}

// TransactionResponse represents a recorded transaction in API responses
type TransactionResponse struct {
	ID         int64   `json:"id"`
	SenderID   *int64  `json:"sender_id"`
	ReceiverID *int64  `json:"receiver_id"`
	Amount     string  `json:"amount"`
	Note       *string `json:"note"`
	Type       string  `json:"type"`
	Timestamp  string  `json:"timestamp"`
}

// HistoryEntryResponse is a transaction as seen by the requesting account
type HistoryEntryResponse struct {
	TransactionResponse
	SenderName       string `json:"sender_name"`
	ReceiverName     string `json:"receiver_name"`
	CounterpartyID   *int64 `json:"counterparty_id"`
	CounterpartyName string `json:"counterparty_name"`
	IsIncoming       bool   `json:"is_incoming"`
}

// SessionResponse is returned by sign-up and sign-in
type SessionResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		ID:        acc.ID,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		FullName:  acc.FullName(),
		Initials:  acc.Initials(),
		Email:     acc.Email,
		Balance:   acc.Balance.StringFixed(2),
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
	}
}

func mapAccountToRosterEntry(acc *account.Account) RosterEntry {
	return RosterEntry{
		ID:        acc.ID,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		FullName:  acc.FullName(),
		Initials:  acc.Initials(),
		Email:     acc.Email,
	}
}

func mapSessionToResponse(acc *account.Account, sess *session.Session) SessionResponse {
	return SessionResponse{
		Account:   mapAccountToResponse(acc),
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func mapTransactionToResponse(tx *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:         tx.ID,
		SenderID:   tx.SenderID,
		ReceiverID: tx.ReceiverID,
		Amount:     tx.Amount.StringFixed(2),
		Note:       tx.Note,
		Type:       string(tx.Type),
		Timestamp:  tx.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func mapHistoryEntryToResponse(e history.Entry) HistoryEntryResponse {
	return HistoryEntryResponse{
		TransactionResponse: TransactionResponse{
			ID:         e.ID,
			SenderID:   e.SenderID,
			ReceiverID: e.ReceiverID,
			Amount:     e.Amount.StringFixed(2),
			Note:       e.Note,
			Type:       string(e.Type),
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		},
		SenderName:       e.SenderName,
		ReceiverName:     e.ReceiverName,
		CounterpartyID:   e.CounterpartyID,
		CounterpartyName: e.CounterpartyName,
		IsIncoming:       e.IsIncoming,
	}
}

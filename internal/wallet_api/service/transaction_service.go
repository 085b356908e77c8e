package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/history"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/shopspring/decimal"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	ledger   Ledger
	pageSize int
	logger   *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(logger *slog.Logger, ledger Ledger, pageSize int) TransactionService {
	if pageSize <= 0 {
		pageSize = history.DefaultPageSize
	}
	return &TransactionServiceImpl{
		ledger:   ledger,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Transfer moves money between two accounts
func (s *TransactionServiceImpl) Transfer(ctx context.Context, req ledger.TransferRequest) (*transaction.Transaction, error) {
	tx, err := s.ledger.Transfer(ctx, req)
	s.record(string(transactionType(req.Type)), err)
	if err != nil {
		s.logRejection("Transfer rejected", err,
			"sender_id", req.SenderID,
			"receiver_id", req.ReceiverID,
			"amount", req.Amount.String(),
		)
		return nil, err
	}

	s.logger.Info("Transfer recorded",
		"transaction_id", tx.ID,
		"sender_id", req.SenderID,
		"receiver_id", req.ReceiverID,
		"amount", tx.Amount.StringFixed(2),
		"type", string(tx.Type),
	)
	return tx, nil
}

func (s *TransactionServiceImpl) Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error) {
	tx, err := s.ledger.Recharge(ctx, accountID, amount, note)
	s.record(string(transaction.TypeRecharge), err)
	if err != nil {
		s.logRejection("Recharge rejected", err, "account_id", accountID, "amount", amount.String())
		return nil, err
	}

	s.logger.Info("Recharge recorded", "transaction_id", tx.ID, "account_id", accountID, "amount", tx.Amount.StringFixed(2))
	return tx, nil
}

func (s *TransactionServiceImpl) PayBill(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error) {
	tx, err := s.ledger.PayBill(ctx, accountID, amount, note)
	s.record(string(transaction.TypeBill), err)
	if err != nil {
		s.logRejection("Bill payment rejected", err, "account_id", accountID, "amount", amount.String())
		return nil, err
	}

	s.logger.Info("Bill payment recorded", "transaction_id", tx.ID, "account_id", accountID, "amount", tx.Amount.StringFixed(2))
	return tx, nil
}

// History loads the account's transactions and the roster, then builds the page
func (s *TransactionServiceImpl) History(ctx context.Context, accountID int64, q history.Query) (history.Page, error) {
	txs, err := s.ledger.ListTransactionsFor(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return history.Page{}, err
	}

	roster, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		s.logger.Error("Failed to load account roster", "error", err)
		return history.Page{}, err
	}

	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	return history.Build(accountID, txs, roster, q), nil
}

func (s *TransactionServiceImpl) record(txType string, err error) {
	movementsTotal.WithLabelValues(txType, outcome(err)).Inc()
}

// logRejection logs business rejections at info and everything else at error.
func (s *TransactionServiceImpl) logRejection(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if isBusinessError(err) {
		s.logger.Info(msg, args...)
		return
	}
	s.logger.Error(msg, args...)
}

func isBusinessError(err error) bool {
	return errors.Is(err, ledger.ErrInvalidAmount) ||
		errors.Is(err, ledger.ErrSameAccount) ||
		errors.Is(err, ledger.ErrAccountNotFound{}) ||
		errors.Is(err, ledger.ErrInsufficientBalance{}) ||
		errors.Is(err, transaction.ErrInvalidType{})
}

// transactionType keeps the metric label set bounded to registered tags.
func transactionType(t transaction.Type) transaction.Type {
	parsed, err := transaction.ParseType(string(t))
	if err != nil {
		return "invalid"
	}
	return parsed
}

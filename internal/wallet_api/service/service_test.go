package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/paywallet-ledger/internal/data/memory"
	"github.com/paywallet-ledger/internal/domain/account"
	"github.com/paywallet-ledger/internal/domain/transaction"
	"github.com/paywallet-ledger/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestEngine() *ledger.Engine {
	return ledger.NewEngine(memory.NewStore())
}

func register(t *testing.T, s AccountService, first, email string) *account.Account {
	t.Helper()
	acc, err := s.Register(context.Background(), first, "Tester", email, "secret123")
	require.NoError(t, err)
	return acc
}

func newAccountService(l Ledger) AccountService {
	return NewAccountService(newTestLogger(), l, bcrypt.MinCost)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Transfer(ctx context.Context, req ledger.TransferRequest) (*transaction.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) Recharge(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error) {
	args := m.Called(ctx, accountID, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) PayBill(ctx context.Context, accountID int64, amount decimal.Decimal, note *string) (*transaction.Transaction, error) {
	args := m.Called(ctx, accountID, amount, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) CorrectBalance(ctx context.Context, accountID int64, balance decimal.Decimal) (*account.Account, error) {
	args := m.Called(ctx, accountID, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedger) CreateAccount(ctx context.Context, firstName, lastName, email, passwordHash string) (*account.Account, error) {
	args := m.Called(ctx, firstName, lastName, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedger) FindAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedger) FindAccountByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLedger) ListTransactionsFor(ctx context.Context, accountID int64) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockLedger) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

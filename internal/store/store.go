package store

import (
	"context"
	"errors"

	"apna-bank-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrDuplicateAccount       = errors.New("duplicate account")
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrNumberCollision reports an insert that lost a race on the account
	// number itself rather than on the applicant identity; callers may
	// reissue a number and try again.
	ErrNumberCollision = errors.New("account number already issued")
)

// AccountStore is the durable mapping from account number to account record.
// FindByNumberAndPIN is the sole authentication path; it returns
// ErrAccountNotFound for an unknown number and for a wrong PIN alike, so
// callers cannot enumerate accounts.
type AccountStore interface {
	Insert(ctx context.Context, account models.Account) (models.Account, error)
	FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByNumberAndPIN(ctx context.Context, accountNumber, pin string) (*models.Account, error)

	// CompareAndSetBalance atomically replaces the balance only when the
	// stored value still equals expected. Returns ErrConcurrentModification
	// when another writer got there first.
	CompareAndSetBalance(ctx context.Context, accountNumber string, expected, updated int64) error
}

// LedgerLog is the append-only store of ledger entries. Entries are never
// mutated or deleted once written.
type LedgerLog interface {
	Append(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error)

	// AppendBatch inserts all entries or none of them.
	AppendBatch(ctx context.Context, entries []models.LedgerEntry) error

	// EntriesByAccount returns entries filed under the account, newest
	// first. Each call re-queries the store.
	EntriesByAccount(ctx context.Context, accountNumber string) ([]models.LedgerEntry, error)
}

// BankStore defines the contract a backend must satisfy to serve the ledger.
type BankStore interface {
	AccountStore
	LedgerLog

	Close()
}

package models

import "time"

// Ledger entry kinds. Self entries have no counterparty; transfer entries
// carry both the sending and receiving account numbers.
const (
	EntryKindCreditSelf = "credit-self"
	EntryKindDebitSelf  = "debit-self"
	EntryKindDebit      = "debit"
	EntryKindCredit     = "credit"
)

// Account represents a bank account record. The balance is held in whole
// currency units as an integer; the PIN is never stored in the clear.
type Account struct {
	AccountNumber string    `db:"account_number"`
	Name          string    `db:"name"`
	PhoneNumber   string    `db:"phone_number"`
	Gender        string    `db:"gender"`
	Age           int       `db:"age"`
	PINHash       string    `db:"pin_hash"`
	Balance       int64     `db:"balance"`
	Version       int64     `db:"version"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// LedgerEntry represents one immutable balance-affecting event (append-only)
type LedgerEntry struct {
	Id            string    `db:"id"`
	AccountNumber string    `db:"account_number"`
	Kind          string    `db:"kind"`
	Amount        int64     `db:"amount"`
	FromAccount   string    `db:"from_account"`
	ToAccount     string    `db:"to_account"`
	CreatedAt     time.Time `db:"created_at"`
}

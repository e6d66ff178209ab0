/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"apna-bank-go/internal/idgen"
	"apna-bank-go/internal/models"
	"apna-bank-go/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// retryBackoff is the per-attempt delay multiplier between compare-and-set
// retries on a contended account.
const retryBackoff = 10 * time.Millisecond

// compensationRetryFactor widens the retry bound for the refund path of a
// failed transfer: the sender's balance must be restored before
// ErrTransferFailed may be returned.
const compensationRetryFactor = 4

// numberReissueAttempts bounds how many times Create draws a fresh account
// number after losing an issuance race on insert.
const numberReissueAttempts = 3

// Service orchestrates authentication, precondition checks and atomic balance
// mutation over the account store and the ledger log. It holds no persistent
// state of its own.
type Service struct {
	accounts store.AccountStore
	entries  store.LedgerLog
	idgen    *idgen.Generator
	policy   models.PolicyConfig
}

func NewService(accounts store.AccountStore, entries store.LedgerLog, gen *idgen.Generator, policy models.PolicyConfig) *Service {
	return &Service{
		accounts: accounts,
		entries:  entries,
		idgen:    gen,
		policy:   policy,
	}
}

// Profile is the read-only projection returned by Details.
type Profile struct {
	AccountNumber string
	Name          string
	PhoneNumber   string
	Gender        string
	Age           int
	Balance       int64
}

// Authenticate resolves an account snapshot from its number and PIN. Every
// operation requires a snapshot obtained here; there is no session state.
func (s *Service) Authenticate(ctx context.Context, accountNumber, pin string) (*models.Account, error) {
	account, err := s.accounts.FindByNumberAndPIN(ctx, accountNumber, pin)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return account, nil
}

// Create validates the applicant details, issues a fresh account number and
// PIN, and inserts the account with a zero balance. The clear PIN is returned
// exactly once and stored only as a bcrypt hash.
func (s *Service) Create(ctx context.Context, name, phone, gender string, age int) (accountNumber, pin string, err error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	gender = strings.ToUpper(strings.TrimSpace(gender))
	phone = strings.TrimSpace(phone)

	if name == "" {
		return "", "", fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if age < 18 {
		return "", "", fmt.Errorf("%w: applicant must be at least 18", ErrValidation)
	}
	if !isTenDigits(phone) {
		return "", "", fmt.Errorf("%w: phone number must be exactly 10 digits", ErrValidation)
	}
	if gender != "M" && gender != "F" && gender != "O" {
		return "", "", fmt.Errorf("%w: gender must be M, F or O", ErrValidation)
	}

	pin, err = s.idgen.PIN()
	if err != nil {
		return "", "", fmt.Errorf("create account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("create account: %w", err)
	}

	// Two concurrent creates can draw the same number between the issuance
	// check and the insert; the primary key catches it and a fresh number
	// is issued.
	for attempt := 0; attempt < numberReissueAttempts; attempt++ {
		accountNumber, err = s.idgen.AccountNumber(ctx)
		if err != nil {
			return "", "", fmt.Errorf("create account: %w", err)
		}

		_, err = s.accounts.Insert(ctx, models.Account{
			AccountNumber: accountNumber,
			Name:          name,
			PhoneNumber:   phone,
			Gender:        gender,
			Age:           age,
			PINHash:       string(hash),
			Balance:       0,
		})
		if err == nil {
			zap.L().Info("Account created",
				zap.String("account_number", accountNumber),
				zap.String("name", name))
			return accountNumber, pin, nil
		}
		if errors.Is(err, store.ErrNumberCollision) {
			zap.L().Warn("Account number lost issuance race, reissuing",
				zap.String("account_number", accountNumber))
			continue
		}
		if errors.Is(err, store.ErrDuplicateAccount) {
			return "", "", ErrDuplicateAccount
		}
		return "", "", fmt.Errorf("create account: %w", err)
	}
	return "", "", fmt.Errorf("create account: %w", store.ErrNumberCollision)
}

// Deposit credits the account and records a credit-self entry. The balance
// change commits via compare-and-set keyed on the snapshot balance; a
// concurrent writer triggers a bounded re-read-and-retry.
func (s *Service) Deposit(ctx context.Context, account *models.Account, amount int64) (int64, error) {
	if amount < s.policy.MinDeposit || amount > s.policy.MaxDeposit {
		return 0, ErrAmountOutOfRange
	}

	newBalance, err := s.credit(ctx, account.AccountNumber, account.Balance, amount, s.policy.MaxRetries)
	if err != nil {
		return 0, err
	}

	_, err = s.entries.Append(ctx, models.LedgerEntry{
		AccountNumber: account.AccountNumber,
		Kind:          models.EntryKindCreditSelf,
		Amount:        amount,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		// The balance change is already durable; only the entry is missing.
		zap.L().Error("Deposit committed without ledger entry",
			zap.String("account_number", account.AccountNumber),
			zap.Int64("amount", amount),
			zap.Error(err))
		return newBalance, fmt.Errorf("%w: %v", ErrEntryNotRecorded, err)
	}

	zap.L().Info("Deposit processed",
		zap.String("account_number", account.AccountNumber),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", newBalance))
	return newBalance, nil
}

// Withdraw debits the account and records a debit-self entry. The funds check
// runs against the freshest read on every retry, so a concurrent withdrawal
// can never take the balance negative.
func (s *Service) Withdraw(ctx context.Context, account *models.Account, amount int64) (int64, error) {
	if amount < s.policy.MinWithdrawal {
		return 0, ErrAmountOutOfRange
	}

	newBalance, err := s.debit(ctx, account.AccountNumber, account.Balance, amount, s.policy.MaxRetries)
	if err != nil {
		return 0, err
	}

	_, err = s.entries.Append(ctx, models.LedgerEntry{
		AccountNumber: account.AccountNumber,
		Kind:          models.EntryKindDebitSelf,
		Amount:        amount,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		zap.L().Error("Withdrawal committed without ledger entry",
			zap.String("account_number", account.AccountNumber),
			zap.Int64("amount", amount),
			zap.Error(err))
		return newBalance, fmt.Errorf("%w: %v", ErrEntryNotRecorded, err)
	}

	zap.L().Info("Withdrawal processed",
		zap.String("account_number", account.AccountNumber),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", newBalance))
	return newBalance, nil
}

// Transfer moves amount from the authenticated sender to the recipient.
// Either both balances change and both ledger entries land, or neither does:
// the sender is debited first, and any failure on the recipient side or in
// the entry batch is compensated by restoring the debited amount before an
// error is returned. No lock is ever held across the two accounts.
func (s *Service) Transfer(ctx context.Context, sender *models.Account, recipientNumber string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrAmountOutOfRange
	}
	if recipientNumber == sender.AccountNumber {
		return 0, fmt.Errorf("%w: cannot transfer to the same account", ErrValidation)
	}

	recipient, err := s.accounts.FindByNumber(ctx, recipientNumber)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return 0, ErrRecipientNotFound
		}
		return 0, fmt.Errorf("resolve recipient: %w", err)
	}

	senderBalance, err := s.debit(ctx, sender.AccountNumber, sender.Balance, amount, s.policy.MaxRetries)
	if err != nil {
		return 0, err
	}

	_, err = s.credit(ctx, recipient.AccountNumber, recipient.Balance, amount, s.policy.MaxRetries)
	if err != nil {
		return 0, s.compensateSender(ctx, sender.AccountNumber, amount, err)
	}

	now := time.Now()
	err = s.entries.AppendBatch(ctx, []models.LedgerEntry{
		{
			AccountNumber: sender.AccountNumber,
			Kind:          models.EntryKindDebit,
			Amount:        amount,
			FromAccount:   sender.AccountNumber,
			ToAccount:     recipient.AccountNumber,
			CreatedAt:     now,
		},
		{
			AccountNumber: recipient.AccountNumber,
			Kind:          models.EntryKindCredit,
			Amount:        amount,
			FromAccount:   sender.AccountNumber,
			ToAccount:     recipient.AccountNumber,
			CreatedAt:     now,
		},
	})
	if err != nil {
		// Unwind the recipient credit, then the sender debit.
		if _, derr := s.debit(ctx, recipient.AccountNumber, -1, amount, s.policy.MaxRetries*compensationRetryFactor); derr != nil {
			zap.L().Error("Transfer entry batch failed and recipient debit-back failed; manual reconciliation required",
				zap.String("sender", sender.AccountNumber),
				zap.String("recipient", recipient.AccountNumber),
				zap.Int64("amount", amount),
				zap.Error(derr))
			return 0, fmt.Errorf("record transfer: %w", err)
		}
		return 0, s.compensateSender(ctx, sender.AccountNumber, amount, err)
	}

	zap.L().Info("Transfer processed",
		zap.String("sender", sender.AccountNumber),
		zap.String("recipient", recipient.AccountNumber),
		zap.Int64("amount", amount),
		zap.Int64("sender_balance", senderBalance))
	return senderBalance, nil
}

// Balance is a projection of the authenticated snapshot. Callers wanting a
// fresh value re-authenticate; staleness is a caller responsibility.
func (s *Service) Balance(account *models.Account) int64 {
	return account.Balance
}

// Details is a read-only projection of the profile fields.
func (s *Service) Details(account *models.Account) Profile {
	return Profile{
		AccountNumber: account.AccountNumber,
		Name:          account.Name,
		PhoneNumber:   account.PhoneNumber,
		Gender:        account.Gender,
		Age:           account.Age,
		Balance:       account.Balance,
	}
}

// credit adds amount to the account balance via compare-and-set, re-reading
// on conflict up to retries times. observed seeds the first attempt; pass a
// negative value to force an initial read.
func (s *Service) credit(ctx context.Context, accountNumber string, observed, amount int64, retries int) (int64, error) {
	balance := observed
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 || balance < 0 {
			if err := backoff(ctx, attempt); err != nil {
				return 0, err
			}
			account, err := s.accounts.FindByNumber(ctx, accountNumber)
			if err != nil {
				return 0, fmt.Errorf("re-read account: %w", err)
			}
			balance = account.Balance
		}

		err := s.accounts.CompareAndSetBalance(ctx, accountNumber, balance, balance+amount)
		if err == nil {
			return balance + amount, nil
		}
		if !errors.Is(err, store.ErrConcurrentModification) {
			return 0, err
		}
	}
	return 0, ErrContention
}

// debit subtracts amount, re-checking sufficiency against every fresh read.
func (s *Service) debit(ctx context.Context, accountNumber string, observed, amount int64, retries int) (int64, error) {
	balance := observed
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 || balance < 0 {
			if err := backoff(ctx, attempt); err != nil {
				return 0, err
			}
			account, err := s.accounts.FindByNumber(ctx, accountNumber)
			if err != nil {
				return 0, fmt.Errorf("re-read account: %w", err)
			}
			balance = account.Balance
		}

		if amount > balance {
			return 0, ErrInsufficientFunds
		}

		err := s.accounts.CompareAndSetBalance(ctx, accountNumber, balance, balance-amount)
		if err == nil {
			return balance - amount, nil
		}
		if !errors.Is(err, store.ErrConcurrentModification) {
			return 0, err
		}
	}
	return 0, ErrContention
}

// compensateSender restores a debited amount after the recipient side of a
// transfer could not be completed. ErrTransferFailed is only returned once
// the refund has landed.
func (s *Service) compensateSender(ctx context.Context, senderNumber string, amount int64, cause error) error {
	if _, err := s.credit(ctx, senderNumber, -1, amount, s.policy.MaxRetries*compensationRetryFactor); err != nil {
		zap.L().Error("Transfer compensation failed; manual reconciliation required",
			zap.String("sender", senderNumber),
			zap.Int64("amount", amount),
			zap.Error(err))
		return fmt.Errorf("refund sender after failed transfer: %w", err)
	}

	zap.L().Warn("Transfer compensated",
		zap.String("sender", senderNumber),
		zap.Int64("amount", amount),
		zap.NamedError("cause", cause))
	return fmt.Errorf("%w: %v", ErrTransferFailed, cause)
}

// backoff sleeps between retry attempts, honoring cancellation.
func backoff(ctx context.Context, attempt int) error {
	if attempt == 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(attempt) * retryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isTenDigits(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

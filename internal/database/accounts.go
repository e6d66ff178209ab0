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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"apna-bank-go/internal/models"
	"apna-bank-go/internal/store"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Insert stores a new account record. The (name, phone_number) pair and the
// account number are both unique; an applicant duplicate returns
// store.ErrDuplicateAccount, a lost number-issuance race returns
// store.ErrNumberCollision.
func (s *Service) Insert(ctx context.Context, account models.Account) (models.Account, error) {
	zap.L().Info("Inserting account",
		zap.String("account_number", account.AccountNumber),
		zap.String("name", account.Name))

	err := s.db.QueryRowContext(ctx, queryInsertAccount,
		account.AccountNumber, account.Name, account.PhoneNumber,
		account.Gender, account.Age, account.PINHash, account.Balance).
		Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			// A collision on the number itself is an issuance race, not an
			// applicant duplicate; the message names the violated columns.
			if strings.Contains(sqliteErr.Error(), "accounts.account_number") {
				zap.L().Warn("Account number collision",
					zap.String("account_number", account.AccountNumber))
				return models.Account{}, store.ErrNumberCollision
			}
			zap.L().Warn("Duplicate account rejected",
				zap.String("account_number", account.AccountNumber),
				zap.String("name", account.Name))
			return models.Account{}, store.ErrDuplicateAccount
		}
		zap.L().Error("Failed to insert account",
			zap.String("account_number", account.AccountNumber),
			zap.Error(err))
		return models.Account{}, fmt.Errorf("unable to insert account: %w", err)
	}

	zap.L().Info("Account inserted successfully",
		zap.String("account_number", account.AccountNumber))
	return account, nil
}

// FindByNumber resolves an account without requiring its PIN; used to look up
// transfer recipients and counterparty names.
func (s *Service) FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	zap.L().Debug("Querying account by number", zap.String("account_number", accountNumber))

	var account models.Account
	err := s.db.QueryRowContext(ctx, queryGetAccountByNumber, accountNumber).Scan(
		&account.AccountNumber, &account.Name, &account.PhoneNumber,
		&account.Gender, &account.Age, &account.PINHash,
		&account.Balance, &account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		zap.L().Error("Failed to query account", zap.String("account_number", accountNumber), zap.Error(err))
		return nil, fmt.Errorf("unable to query account: %w", err)
	}

	return &account, nil
}

// FindByNumberAndPIN authenticates an account. A wrong PIN and an unknown
// account number are indistinguishable to the caller.
func (s *Service) FindByNumberAndPIN(ctx context.Context, accountNumber, pin string) (*models.Account, error) {
	account, err := s.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PINHash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			zap.L().Warn("PIN mismatch", zap.String("account_number", accountNumber))
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("unable to verify PIN: %w", err)
	}

	return account, nil
}

// CompareAndSetBalance applies the single UPDATE all balance changes must go
// through. The WHERE clause is keyed on the previously observed balance, so a
// concurrent writer makes the update affect zero rows instead of clobbering
// its change.
func (s *Service) CompareAndSetBalance(ctx context.Context, accountNumber string, expected, updated int64) error {
	result, err := s.db.ExecContext(ctx, queryCompareAndSetBalance, updated, accountNumber, expected)
	if err != nil {
		zap.L().Error("Failed to update balance",
			zap.String("account_number", accountNumber),
			zap.Error(err))
		return fmt.Errorf("unable to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var one int
		err := s.db.QueryRowContext(ctx, queryAccountExists, accountNumber).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("unable to check account existence: %w", err)
		}

		zap.L().Debug("Balance update lost the race",
			zap.String("account_number", accountNumber),
			zap.Int64("expected", expected))
		return store.ErrConcurrentModification
	}

	zap.L().Info("Balance updated",
		zap.String("account_number", accountNumber),
		zap.Int64("old_balance", expected),
		zap.Int64("new_balance", updated))
	return nil
}

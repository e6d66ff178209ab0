package database

import (
	"context"
	"database/sql"
	"fmt"

	"apna-bank-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// nullable maps an optional counterparty account number to its column value.
func nullable(accountNumber string) sql.NullString {
	if accountNumber == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: accountNumber, Valid: true}
}

// Append durably records a single ledger entry. Entries are write-once; there
// is no update or delete path.
func (s *Service) Append(ctx context.Context, entry models.LedgerEntry) (models.LedgerEntry, error) {
	if entry.Id == "" {
		entry.Id = uuid.New().String()
	}

	zap.L().Info("Appending ledger entry",
		zap.String("id", entry.Id),
		zap.String("account_number", entry.AccountNumber),
		zap.String("kind", entry.Kind),
		zap.Int64("amount", entry.Amount))

	_, err := s.db.ExecContext(ctx, queryInsertLedgerEntry,
		entry.Id, entry.AccountNumber, entry.Kind, entry.Amount,
		nullable(entry.FromAccount), nullable(entry.ToAccount), entry.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to append ledger entry",
			zap.String("account_number", entry.AccountNumber),
			zap.Error(err))
		return models.LedgerEntry{}, fmt.Errorf("unable to append ledger entry: %w", err)
	}

	return entry, nil
}

// AppendBatch inserts multiple entries inside one database transaction so the
// store guarantees all-or-nothing durability for the batch.
func (s *Service) AppendBatch(ctx context.Context, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range entries {
		if entries[i].Id == "" {
			entries[i].Id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, queryInsertLedgerEntry,
			entries[i].Id, entries[i].AccountNumber, entries[i].Kind, entries[i].Amount,
			nullable(entries[i].FromAccount), nullable(entries[i].ToAccount), entries[i].CreatedAt)
		if err != nil {
			zap.L().Error("Failed to append ledger entry batch",
				zap.String("account_number", entries[i].AccountNumber),
				zap.Error(err))
			return fmt.Errorf("unable to append ledger entry batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit ledger entry batch: %w", err)
	}

	zap.L().Info("Ledger entry batch appended", zap.Int("count", len(entries)))
	return nil
}

// EntriesByAccount returns the entries filed under the account, newest first.
func (s *Service) EntriesByAccount(ctx context.Context, accountNumber string) ([]models.LedgerEntry, error) {
	zap.L().Debug("Querying ledger entries", zap.String("account_number", accountNumber))

	rows, err := s.db.QueryContext(ctx, queryGetEntriesByAccount, accountNumber)
	if err != nil {
		zap.L().Error("Failed to query ledger entries",
			zap.String("account_number", accountNumber),
			zap.Error(err))
		return nil, fmt.Errorf("unable to query ledger entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		var from, to sql.NullString
		err := rows.Scan(&entry.Id, &entry.AccountNumber, &entry.Kind, &entry.Amount,
			&from, &to, &entry.CreatedAt)
		if err != nil {
			zap.L().Error("Failed to scan ledger entry row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan ledger entry row: %w", err)
		}
		entry.FromAccount = from.String
		entry.ToAccount = to.String
		entries = append(entries, entry)
	}

	// Check for errors during iteration
	if err := rows.Err(); err != nil {
		zap.L().Error("Error during ledger entry row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	zap.L().Debug("Retrieved ledger entries",
		zap.String("account_number", accountNumber),
		zap.Int("count", len(entries)))
	return entries, nil
}

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

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (account_number, name, phone_number, gender, age, pin_hash, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING version, created_at, updated_at`

	queryGetAccountByNumber = `
		SELECT account_number, name, phone_number, gender, age, pin_hash, balance, version, created_at, updated_at
		FROM accounts
		WHERE account_number = ?`

	queryAccountExists = `
		SELECT 1 FROM accounts WHERE account_number = ? LIMIT 1`

	queryCompareAndSetBalance = `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE account_number = ? AND balance = ?`

	// Ledger entry queries
	queryInsertLedgerEntry = `
		INSERT INTO ledger_entries (id, account_number, kind, amount, from_account, to_account, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetEntriesByAccount = `
		SELECT id, account_number, kind, amount, from_account, to_account, created_at
		FROM ledger_entries
		WHERE account_number = ?
		ORDER BY created_at DESC, rowid DESC`
)

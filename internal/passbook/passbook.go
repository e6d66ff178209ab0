package passbook

import (
	"context"
	"errors"
	"fmt"
	"io"

	"apna-bank-go/internal/common"
	"apna-bank-go/internal/ledger"
	"apna-bank-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Row is one formatted passbook line. Counterparty fields render as "N/A"
// when the entry has no counterparty and "Unknown" when the account number
// cannot be resolved to a name anymore.
type Row struct {
	AccountNumber string
	Kind          string
	From          string
	To            string
	Amount        string
	Timestamp     string
}

// Reporter renders transaction history for one account. Pure read: every
// call re-queries both stores and nothing is mutated.
type Reporter struct {
	accounts store.AccountStore
	entries  store.LedgerLog
}

func NewReporter(accounts store.AccountStore, entries store.LedgerLog) *Reporter {
	return &Reporter{accounts: accounts, entries: entries}
}

// Statement authenticates the account and returns its history, newest first.
func (r *Reporter) Statement(ctx context.Context, accountNumber, pin string) ([]Row, error) {
	if _, err := r.accounts.FindByNumberAndPIN(ctx, accountNumber, pin); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ledger.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("passbook: %w", err)
	}

	entries, err := r.entries.EntriesByAccount(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("passbook: %w", err)
	}

	// Resolve each counterparty number once per statement.
	names := map[string]string{}
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{
			AccountNumber: entry.AccountNumber,
			Kind:          entry.Kind,
			From:          r.displayParty(ctx, names, entry.FromAccount),
			To:            r.displayParty(ctx, names, entry.ToAccount),
			Amount:        decimal.NewFromInt(entry.Amount).String(),
			Timestamp:     entry.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	zap.L().Debug("Statement generated",
		zap.String("account_number", accountNumber),
		zap.Int("rows", len(rows)))
	return rows, nil
}

// displayParty formats a counterparty as "<number> (<name>)".
func (r *Reporter) displayParty(ctx context.Context, names map[string]string, accountNumber string) string {
	if accountNumber == "" {
		return "N/A"
	}

	name, cached := names[accountNumber]
	if !cached {
		account, err := r.accounts.FindByNumber(ctx, accountNumber)
		switch {
		case err == nil:
			name = account.Name
		case errors.Is(err, store.ErrAccountNotFound):
			name = "Unknown"
		default:
			zap.L().Warn("Failed to resolve counterparty name",
				zap.String("account_number", accountNumber),
				zap.Error(err))
			name = "Unknown"
		}
		names[accountNumber] = name
	}

	return fmt.Sprintf("%s (%s)", accountNumber, name)
}

// Render writes the statement as a box-drawn table.
func Render(w io.Writer, bankName, accountNumber string, rows []Row) {
	common.WriteHeader(w, fmt.Sprintf("Passbook for Account: %s - %s", accountNumber, bankName))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No transaction history found for this account.")
		common.WriteFooter(w, "")
		return
	}

	fmt.Fprintf(w, "%-13s %-28s %-28s %12s  %s\n", "Type", "From", "To", "Amount", "Date & Time")
	common.WriteBoxSeparator(w, common.DefaultWidth)
	for i, row := range rows {
		fmt.Fprintf(w, "%s%-10s %-28s %-28s %12s  %s\n",
			common.BoxPrefix(i == len(rows)-1),
			row.Kind, row.From, row.To, row.Amount, row.Timestamp)
	}
	common.WriteFooter(w, fmt.Sprintf("%d entries", len(rows)))
}

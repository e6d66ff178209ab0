package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"apna-bank-go/internal/ledger"
	"apna-bank-go/internal/models"
	"apna-bank-go/internal/passbook"

	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal reports whether stdin is an interactive terminal; when it is
// not (piped input, tests), PINs are read as plain lines.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// Menu drives one interactive teller session. Business-rule failures are
// printed and the loop continues; only Exit (or input EOF) ends the session.
type Menu struct {
	ledger   *ledger.Service
	reporter *passbook.Reporter
	policy   models.PolicyConfig
	in       *bufio.Reader
	out      io.Writer
}

func New(ledgerSvc *ledger.Service, reporter *passbook.Reporter, policy models.PolicyConfig, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		ledger:   ledgerSvc,
		reporter: reporter,
		policy:   policy,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Run displays the menu until the user exits or input is exhausted.
func (m *Menu) Run(ctx context.Context) error {
	fmt.Fprintf(m.out, "Welcome to %s\n", m.policy.BankName)
	fmt.Fprintln(m.out, "---------------------------------------------")

	for {
		fmt.Fprintln(m.out, "\nPlease choose an option:")
		fmt.Fprintln(m.out, "1) Create a new account")
		fmt.Fprintln(m.out, "2) Deposit")
		fmt.Fprintln(m.out, "3) Withdraw")
		fmt.Fprintln(m.out, "4) Send money")
		fmt.Fprintln(m.out, "5) Check balance")
		fmt.Fprintln(m.out, "6) View account details")
		fmt.Fprintln(m.out, "7) View transaction history")
		fmt.Fprintln(m.out, "8) Exit")

		choice, err := m.prompt("Enter your choice: ")
		if err != nil {
			return m.finish(err)
		}

		option, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid input. Please enter a number.")
			continue
		}

		switch option {
		case 1:
			err = m.handleCreate(ctx)
		case 2:
			err = m.handleDeposit(ctx)
		case 3:
			err = m.handleWithdraw(ctx)
		case 4:
			err = m.handleTransfer(ctx)
		case 5:
			err = m.handleBalance(ctx)
		case 6:
			err = m.handleDetails(ctx)
		case 7:
			err = m.handleHistory(ctx)
		case 8:
			fmt.Fprintln(m.out, "Thank you for banking with us. Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please select an option between 1 and 8.")
			continue
		}
		if err != nil {
			return m.finish(err)
		}
	}
}

// finish maps input exhaustion to a clean session end.
func (m *Menu) finish(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *Menu) handleCreate(ctx context.Context) error {
	name, err := m.prompt("Enter your name: ")
	if err != nil {
		return err
	}

	var gender string
	for {
		gender, err = m.prompt("Enter your gender (M for Male, F for Female, O for Other): ")
		if err != nil {
			return err
		}
		gender = strings.ToUpper(strings.TrimSpace(gender))
		if gender == "M" || gender == "F" || gender == "O" {
			break
		}
		fmt.Fprintln(m.out, "Invalid input. Please enter 'M', 'F', or 'O'.")
	}

	phone, err := m.prompt("Enter your 10-digit phone number: ")
	if err != nil {
		return err
	}

	ageText, err := m.prompt("Enter your age: ")
	if err != nil {
		return err
	}
	age, err := strconv.Atoi(ageText)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid input. Please enter valid details.")
		return nil
	}

	number, pin, err := m.ledger.Create(ctx, name, phone, gender, age)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return nil
	}

	fmt.Fprintf(m.out, "Account created successfully!\nAccount Number: %s\nPIN: %s\n", number, pin)
	return nil
}

func (m *Menu) handleDeposit(ctx context.Context) error {
	account, err := m.authenticate(ctx)
	if err != nil || account == nil {
		return err
	}

	amount, ok, err := m.promptAmount(fmt.Sprintf("Enter the amount to deposit (min %d, max %d): ",
		m.policy.MinDeposit, m.policy.MaxDeposit))
	if err != nil || !ok {
		return err
	}

	newBalance, err := m.ledger.Deposit(ctx, account, amount)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return nil
	}
	fmt.Fprintf(m.out, "Deposit successful! New Balance: %d\n", newBalance)
	return nil
}

func (m *Menu) handleWithdraw(ctx context.Context) error {
	account, err := m.authenticate(ctx)
	if err != nil || account == nil {
		return err
	}

	amount, ok, err := m.promptAmount(fmt.Sprintf("Enter withdrawal amount (min %d): ", m.policy.MinWithdrawal))
	if err != nil || !ok {
		return err
	}

	newBalance, err := m.ledger.Withdraw(ctx, account, amount)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return nil
	}
	fmt.Fprintf(m.out, "Withdrawal successful! New Balance: %d\n", newBalance)
	return nil
}

func (m *Menu) handleTransfer(ctx context.Context) error {
	account, err := m.authenticate(ctx)
	if err != nil || account == nil {
		return err
	}

	recipient, err := m.prompt("Enter the recipient's account number: ")
	if err != nil {
		return err
	}

	amount, ok, err := m.promptAmount("Enter transfer amount: ")
	if err != nil || !ok {
		return err
	}

	newBalance, err := m.ledger.Transfer(ctx, account, recipient, amount)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return nil
	}
	fmt.Fprintf(m.out, "Successfully transferred %d to %s. New Balance: %d\n", amount, recipient, newBalance)
	return nil
}

func (m *Menu) handleBalance(ctx context.Context) error {
	account, err := m.authenticate(ctx)
	if err != nil || account == nil {
		return err
	}
	fmt.Fprintf(m.out, "Your account balance is: %d\n", m.ledger.Balance(account))
	return nil
}

func (m *Menu) handleDetails(ctx context.Context) error {
	account, err := m.authenticate(ctx)
	if err != nil || account == nil {
		return err
	}

	profile := m.ledger.Details(account)
	fmt.Fprintln(m.out, "\n---------- Account Details ----------")
	fmt.Fprintf(m.out, "Name: %s\n", profile.Name)
	fmt.Fprintf(m.out, "Phone: %s\n", profile.PhoneNumber)
	fmt.Fprintf(m.out, "Gender: %s\n", profile.Gender)
	fmt.Fprintf(m.out, "Age: %d\n", profile.Age)
	fmt.Fprintf(m.out, "Account: %s\n", profile.AccountNumber)
	fmt.Fprintf(m.out, "Balance: %d\n", profile.Balance)
	return nil
}

func (m *Menu) handleHistory(ctx context.Context) error {
	number, err := m.prompt("Enter your account number: ")
	if err != nil {
		return err
	}
	pin, err := m.promptPIN()
	if err != nil {
		return err
	}

	rows, err := m.reporter.Statement(ctx, number, pin)
	if err != nil {
		fmt.Fprintln(m.out, errorMessage(err))
		return nil
	}
	passbook.Render(m.out, m.policy.BankName, number, rows)
	return nil
}

// authenticate prompts for credentials and resolves the account snapshot.
// A failed authentication is reported and returns (nil, nil) so the menu
// loop continues.
func (m *Menu) authenticate(ctx context.Context) (*models.Account, error) {
	number, err := m.prompt("Enter your account number: ")
	if err != nil {
		return nil, err
	}
	pin, err := m.promptPIN()
	if err != nil {
		return nil, err
	}

	account, err := m.ledger.Authenticate(ctx, number, pin)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidCredentials) {
			fmt.Fprintln(m.out, "Invalid account number or PIN.")
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

func (m *Menu) prompt(text string) (string, error) {
	fmt.Fprint(m.out, text)
	line, err := m.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(strings.TrimSpace(line)) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPIN reads the PIN without echo when attached to a terminal.
func (m *Menu) promptPIN() (string, error) {
	if !isTerminal() {
		return m.prompt("Enter your PIN: ")
	}

	fmt.Fprint(m.out, "Enter your PIN: ")
	pin, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(m.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pin)), nil
}

// promptAmount parses a currency amount. Decimal input is accepted but must
// be a whole number of currency units; malformed input is reported and the
// operation is abandoned back to the menu (ok == false).
func (m *Menu) promptAmount(text string) (int64, bool, error) {
	raw, err := m.prompt(text)
	if err != nil {
		return 0, false, err
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		fmt.Fprintln(m.out, "Please enter a valid numeric amount.")
		return 0, false, nil
	}
	if !amount.IsInteger() || !amount.IsPositive() {
		fmt.Fprintln(m.out, "Amount must be a positive whole number.")
		return 0, false, nil
	}
	return amount.IntPart(), true, nil
}

// errorMessage renders business failures in teller-friendly wording.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ledger.ErrAmountOutOfRange):
		return "Invalid amount. Please try again."
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return "Invalid amount or insufficient balance."
	case errors.Is(err, ledger.ErrRecipientNotFound):
		return "Recipient account not found."
	case errors.Is(err, ledger.ErrDuplicateAccount):
		return "An account already exists for this name and phone number."
	case errors.Is(err, ledger.ErrInvalidCredentials):
		return "Invalid account number or PIN."
	case errors.Is(err, ledger.ErrContention):
		return "The account is busy right now. Please try again."
	case errors.Is(err, ledger.ErrTransferFailed):
		return "Transfer failed. No funds were moved."
	case errors.Is(err, ledger.ErrEntryNotRecorded):
		return "The transaction went through, but recording it in your history failed. Please contact the branch."
	case errors.Is(err, ledger.ErrValidation):
		return "Invalid details or age below 18. Try again."
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}

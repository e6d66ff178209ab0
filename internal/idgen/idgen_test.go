package idgen

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"

	"apna-bank-go/internal/models"
	"apna-bank-go/internal/store"
)

// fakeLookup simulates the account store: numbers in taken are occupied,
// everything else is free.
type fakeLookup struct {
	taken map[string]bool
	err   error
}

func (f *fakeLookup) FindByNumber(_ context.Context, accountNumber string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.taken[accountNumber] {
		return &models.Account{AccountNumber: accountNumber}, nil
	}
	return nil, store.ErrAccountNotFound
}

func TestAccountNumberFormat(t *testing.T) {
	generator := New("APNA", &fakeLookup{})

	pattern := regexp.MustCompile(`^APNA\d{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := generator.AccountNumber(context.Background())
		if err != nil {
			t.Fatalf("AccountNumber failed: %v", err)
		}
		if !pattern.MatchString(number) {
			t.Fatalf("Expected prefix plus 12 digits, got %s", number)
		}
		if seen[number] {
			t.Fatalf("Duplicate account number issued: %s", number)
		}
		seen[number] = true
	}
}

type allTaken struct{}

func (allTaken) FindByNumber(_ context.Context, accountNumber string) (*models.Account, error) {
	return &models.Account{AccountNumber: accountNumber}, nil
}

func TestAccountNumber_SpaceExhausted(t *testing.T) {
	// A store that reports every candidate as taken must not spin forever.
	generator := New("APNA", allTaken{})

	_, err := generator.AccountNumber(context.Background())
	if !errors.Is(err, ErrNumberSpaceExhausted) {
		t.Errorf("Expected ErrNumberSpaceExhausted, got %v", err)
	}
}

func TestAccountNumber_StoreError(t *testing.T) {
	storeErr := errors.New("disk on fire")
	generator := New("APNA", &fakeLookup{err: storeErr})

	_, err := generator.AccountNumber(context.Background())
	if !errors.Is(err, storeErr) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
}

func TestPINRangeAndUniqueness(t *testing.T) {
	generator := New("APNA", &fakeLookup{})

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		pin, err := generator.PIN()
		if err != nil {
			t.Fatalf("PIN failed: %v", err)
		}
		if len(pin) != 4 {
			t.Fatalf("Expected 4-digit PIN, got %q", pin)
		}
		value, err := strconv.Atoi(pin)
		if err != nil {
			t.Fatalf("PIN is not numeric: %q", pin)
		}
		if value < 1000 || value > 9999 {
			t.Fatalf("PIN out of range: %d", value)
		}
		if seen[pin] {
			t.Fatalf("PIN reused within one generator: %s", pin)
		}
		seen[pin] = true
	}
}

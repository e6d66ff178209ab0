package idgen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"apna-bank-go/internal/models"
	"apna-bank-go/internal/store"
)

// Issuance retry bounds. The 12-digit number space makes exhaustion
// unreachable in practice; the bounds exist so a broken store cannot spin
// the generator forever.
const (
	maxNumberAttempts = 100
	maxPINAttempts    = 10000
)

var (
	ErrNumberSpaceExhausted = errors.New("account number space exhausted")
	ErrPINSpaceExhausted    = errors.New("pin space exhausted")
)

// accountLookup is the slice of the account store the generator needs to
// check issued numbers against durable state.
type accountLookup interface {
	FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
}

// Generator issues unique account numbers and PINs. Number uniqueness is
// checked against the account store so it holds across process restarts;
// PIN reuse is only avoided within the current process run.
type Generator struct {
	prefix   string
	accounts accountLookup

	mu         sync.Mutex
	issuedPINs map[string]struct{}
}

func New(prefix string, accounts accountLookup) *Generator {
	return &Generator{
		prefix:     prefix,
		accounts:   accounts,
		issuedPINs: make(map[string]struct{}),
	}
}

// AccountNumber returns a fresh number of the form <prefix> + 12 digits,
// rejection-sampling against numbers already present in the store.
func (g *Generator) AccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		digits, err := randomDigits(12)
		if err != nil {
			return "", fmt.Errorf("unable to generate account number: %w", err)
		}
		number := g.prefix + digits

		_, err = g.accounts.FindByNumber(ctx, number)
		if errors.Is(err, store.ErrAccountNotFound) {
			return number, nil
		}
		if err != nil {
			return "", fmt.Errorf("unable to check account number uniqueness: %w", err)
		}
		// Number already issued, sample again.
	}
	return "", ErrNumberSpaceExhausted
}

// PIN returns a 4-digit PIN in [1000, 9999] not previously issued by this
// generator instance.
func (g *Generator) PIN() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < maxPINAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", fmt.Errorf("unable to generate pin: %w", err)
		}
		pin := fmt.Sprintf("%04d", n.Int64()+1000)

		if _, taken := g.issuedPINs[pin]; taken {
			continue
		}
		g.issuedPINs[pin] = struct{}{}
		return pin, nil
	}
	return "", ErrPINSpaceExhausted
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

package database

import (
	"context"
	"testing"
	"time"

	"apna-bank-go/internal/models"
)

func TestAppendAndQueryEntries(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := service.Append(ctx, models.LedgerEntry{
		AccountNumber: "APNA000000000001",
		Kind:          models.EntryKindCreditSelf,
		Amount:        1000,
		CreatedAt:     base,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if first.Id == "" {
		t.Error("Expected generated entry id")
	}

	_, err = service.Append(ctx, models.LedgerEntry{
		AccountNumber: "APNA000000000001",
		Kind:          models.EntryKindDebitSelf,
		Amount:        400,
		CreatedAt:     base.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entries, err := service.EntriesByAccount(ctx, "APNA000000000001")
	if err != nil {
		t.Fatalf("EntriesByAccount failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	// Newest first.
	if entries[0].Kind != models.EntryKindDebitSelf {
		t.Errorf("Expected newest entry first, got kind %s", entries[0].Kind)
	}
	if entries[1].Kind != models.EntryKindCreditSelf {
		t.Errorf("Expected oldest entry last, got kind %s", entries[1].Kind)
	}
	if entries[0].FromAccount != "" || entries[0].ToAccount != "" {
		t.Errorf("Expected empty counterparties for self entry, got from=%q to=%q",
			entries[0].FromAccount, entries[0].ToAccount)
	}
}

func TestAppendBatch(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := service.AppendBatch(ctx, []models.LedgerEntry{
		{
			AccountNumber: "APNA000000000001",
			Kind:          models.EntryKindDebit,
			Amount:        400,
			FromAccount:   "APNA000000000001",
			ToAccount:     "APNA000000000002",
			CreatedAt:     now,
		},
		{
			AccountNumber: "APNA000000000002",
			Kind:          models.EntryKindCredit,
			Amount:        400,
			FromAccount:   "APNA000000000001",
			ToAccount:     "APNA000000000002",
			CreatedAt:     now,
		},
	})
	if err != nil {
		t.Fatalf("AppendBatch failed: %v", err)
	}

	senderEntries, err := service.EntriesByAccount(ctx, "APNA000000000001")
	if err != nil {
		t.Fatalf("EntriesByAccount failed: %v", err)
	}
	if len(senderEntries) != 1 {
		t.Fatalf("Expected 1 sender entry, got %d", len(senderEntries))
	}
	if senderEntries[0].Kind != models.EntryKindDebit {
		t.Errorf("Expected debit entry, got %s", senderEntries[0].Kind)
	}
	if senderEntries[0].ToAccount != "APNA000000000002" {
		t.Errorf("Expected recipient counterparty, got %q", senderEntries[0].ToAccount)
	}

	recipientEntries, err := service.EntriesByAccount(ctx, "APNA000000000002")
	if err != nil {
		t.Fatalf("EntriesByAccount failed: %v", err)
	}
	if len(recipientEntries) != 1 {
		t.Fatalf("Expected 1 recipient entry, got %d", len(recipientEntries))
	}
	if recipientEntries[0].Kind != models.EntryKindCredit {
		t.Errorf("Expected credit entry, got %s", recipientEntries[0].Kind)
	}
	if !recipientEntries[0].CreatedAt.Equal(senderEntries[0].CreatedAt) {
		t.Errorf("Expected both legs to share a timestamp, got %v and %v",
			senderEntries[0].CreatedAt, recipientEntries[0].CreatedAt)
	}
}

func TestAppendBatch_Empty(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	if err := service.AppendBatch(context.Background(), nil); err != nil {
		t.Errorf("Expected empty batch to be a no-op, got %v", err)
	}
}

func TestEntriesByAccount_Empty(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	entries, err := service.EntriesByAccount(context.Background(), "APNA000000000001")
	if err != nil {
		t.Fatalf("EntriesByAccount failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestEntriesByAccount_Repeatable(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := service.Append(ctx, models.LedgerEntry{
			AccountNumber: "APNA000000000001",
			Kind:          models.EntryKindCreditSelf,
			Amount:        int64(100 * (i + 1)),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	first, err := service.EntriesByAccount(ctx, "APNA000000000001")
	if err != nil {
		t.Fatalf("First query failed: %v", err)
	}
	second, err := service.EntriesByAccount(ctx, "APNA000000000001")
	if err != nil {
		t.Fatalf("Second query failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Expected stable result size, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Id != second[i].Id {
			t.Errorf("Expected stable ordering at index %d, got %s and %s",
				i, first[i].Id, second[i].Id)
		}
	}
}

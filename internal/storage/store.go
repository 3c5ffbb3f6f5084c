// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var (
	// ErrNotFound is wrapped by every lookup that misses.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict means a record was no longer in the expected state.
	ErrStatusConflict = errors.New("status changed concurrently")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group with its members.
	// group.ID and group.CreatedAt are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members in insertion order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// CreateExpense persists an expense and its splits in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves a live (not deleted) expense.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the live expenses of a group, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// ReplaceExpenseSplits atomically swaps an expense's amount and splits.
	ReplaceExpenseSplits(ctx context.Context, expenseID string, amount money.Amount, splits []models.Split) error

	// DeleteExpense tombstones an expense: it stops counting toward balances
	// and its original amount and splits are kept.
	DeleteExpense(ctx context.Context, expenseID, reason string) (*models.ExpenseTombstone, error)

	// GetTombstone retrieves what a deleted expense looked like.
	GetTombstone(ctx context.Context, expenseID string) (*models.ExpenseTombstone, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns every settlement of a group, oldest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// UpdateSettlementStatus moves a settlement from one status to another.
	// It fails with ErrStatusConflict when the stored status is not from.
	UpdateSettlementStatus(ctx context.Context, settlementID string, from, to models.SettlementStatus) error

	// Close releases any resources held by the store.
	Close() error
}

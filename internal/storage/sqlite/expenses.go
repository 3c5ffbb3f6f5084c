package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, amount, currency, paid_by, category, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, int64(expense.Amount), expense.Currency, expense.PaidBy,
		expense.Category, expense.Description, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, expense.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splits []models.Split) error {
	for i, split := range splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, member_id, amount, position) VALUES (?, ?, ?, ?)",
			expenseID, split.MemberID, int64(split.Amount), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split for %s: %w", split.MemberID, err)
		}
	}
	return nil
}

// GetExpense retrieves a live expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	e := &models.Expense{}
	var amount int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, amount, currency, paid_by, category, description, created_at
		 FROM expenses WHERE id = ? AND deleted_at IS NULL`,
		expenseID,
	).Scan(&e.ID, &e.GroupID, &amount, &e.Currency, &e.PaidBy, &e.Category, &e.Description, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	e.Amount = money.Amount(amount)

	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		var splitAmount int64
		if err := rows.Scan(&split.MemberID, &splitAmount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.Amount = money.Amount(splitAmount)
		e.Splits = append(e.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return e, nil
}

// ListExpensesByGroup retrieves the live expenses of a group with their splits.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, amount, currency, paid_by, category, description, created_at
		 FROM expenses WHERE group_id = ? AND deleted_at IS NULL ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	byID := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		var amount int64
		if err := rows.Scan(&e.ID, &e.GroupID, &amount, &e.Currency, &e.PaidBy, &e.Category, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = money.Amount(amount)
		byID[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.member_id, s.amount
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? AND e.deleted_at IS NULL
		 ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits by group: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID string
		var split models.Split
		var amount int64
		if err := splitRows.Scan(&expenseID, &split.MemberID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.Amount = money.Amount(amount)
		if i, ok := byID[expenseID]; ok {
			expenses[i].Splits = append(expenses[i].Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return expenses, nil
}

// ReplaceExpenseSplits swaps an expense's amount and splits in one transaction.
func (s *SQLiteStore) ReplaceExpenseSplits(ctx context.Context, expenseID string, amount money.Amount, splits []models.Split) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE expenses SET amount = ? WHERE id = ? AND deleted_at IS NULL",
		int64(amount), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	} else if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expenseID, splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense marks an expense deleted and records a tombstone with its
// original amount and splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID, reason string) (*models.ExpenseTombstone, error) {
	expense, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	tomb := &models.ExpenseTombstone{
		ExpenseID: expense.ID,
		GroupID:   expense.GroupID,
		Amount:    expense.Amount,
		PaidBy:    expense.PaidBy,
		Splits:    expense.Splits,
		Reason:    reason,
		DeletedAt: time.Now().Unix(),
	}
	encoded, err := json.Marshal(tomb.Splits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode splits: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expense_tombstones (expense_id, group_id, amount, paid_by, splits, reason, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tomb.ExpenseID, tomb.GroupID, int64(tomb.Amount), tomb.PaidBy, string(encoded), tomb.Reason, tomb.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tombstone: %w", err)
	}
	_, err = tx.ExecContext(ctx, "UPDATE expenses SET deleted_at = ? WHERE id = ?", tomb.DeletedAt, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark expense deleted: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tomb, nil
}

// GetTombstone retrieves the tombstone of a deleted expense.
func (s *SQLiteStore) GetTombstone(ctx context.Context, expenseID string) (*models.ExpenseTombstone, error) {
	tomb := &models.ExpenseTombstone{}
	var amount int64
	var encoded string
	err := s.db.QueryRowContext(ctx,
		`SELECT expense_id, group_id, amount, paid_by, splits, reason, deleted_at
		 FROM expense_tombstones WHERE expense_id = ?`,
		expenseID,
	).Scan(&tomb.ExpenseID, &tomb.GroupID, &amount, &tomb.PaidBy, &encoded, &tomb.Reason, &tomb.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tombstone %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tombstone: %w", err)
	}
	tomb.Amount = money.Amount(amount)
	if err := json.Unmarshal([]byte(encoded), &tomb.Splits); err != nil {
		return nil, fmt.Errorf("failed to decode tombstone splits: %w", err)
	}
	return tomb, nil
}

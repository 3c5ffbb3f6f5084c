package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// AddExpense normalizes, validates and records a new expense.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[ledgerapi.AddExpenseRequest]) (*connect.Response[ledgerapi.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"paid_by", req.Msg.PaidBy,
		"mode", req.Msg.Split.Mode,
	)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("AddExpense failed to load group", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	cur, total, err := parseTotal(group, req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}

	splits, mode, err := s.resolveSplits(group, cur, total, req.Msg.Split, group.MemberIDs())
	if err != nil {
		slog.Error("AddExpense split failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Amount:      total,
		Currency:    cur.Code,
		PaidBy:      req.Msg.PaidBy,
		Category:    req.Msg.Category,
		Description: req.Msg.Description,
		Splits:      splits,
	}
	if err := s.tol.ValidateExpense(expense, group.Members); err != nil {
		slog.Error("AddExpense validation failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.ExpensesRecorded.WithLabelValues(string(mode)).Inc()

	slog.Info("Expense added",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"amount", total.Format(cur),
		"splits", len(splits),
	)

	return connect.NewResponse(&ledgerapi.AddExpenseResponse{Expense: toAPIExpense(expense, cur)}), nil
}

// EditExpense replaces the amount and splits of an existing expense.
func (s *LedgerService) EditExpense(ctx context.Context, req *connect.Request[ledgerapi.EditExpenseRequest]) (*connect.Response[ledgerapi.EditExpenseResponse], error) {
	slog.Info("EditExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"amount", req.Msg.Amount.String(),
		"mode", req.Msg.Split.Mode,
	)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("EditExpense failed to load expense", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	cur, err := money.LookupCurrency(expense.Currency)
	if err != nil {
		return nil, connectError(err)
	}
	total := expense.Amount
	if !req.Msg.Amount.IsZero() {
		if cur, total, err = parseTotal(group, req.Msg.Amount); err != nil {
			return nil, connectError(err)
		}
	}

	current := make([]string, len(expense.Splits))
	for i, sp := range expense.Splits {
		current[i] = sp.MemberID
	}
	splits, mode, err := s.resolveSplits(group, cur, total, req.Msg.Split, current)
	if err != nil {
		slog.Error("EditExpense split failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}

	expense.Amount = total
	expense.Splits = splits
	if err := s.tol.ValidateExpense(expense, group.Members); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.ReplaceExpenseSplits(ctx, expense.ID, total, splits); err != nil {
		slog.Error("EditExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}
	s.metrics.ExpensesRecorded.WithLabelValues(string(mode)).Inc()

	slog.Info("Expense edited", "expense_id", expense.ID, "amount", total.Format(cur))

	return connect.NewResponse(&ledgerapi.EditExpenseResponse{Expense: toAPIExpense(expense, cur)}), nil
}

// DeleteExpense tombstones an expense so it no longer counts toward balances.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[ledgerapi.DeleteExpenseRequest]) (*connect.Response[ledgerapi.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID, "reason", req.Msg.Reason)

	tomb, err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID, req.Msg.Reason)
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, connectError(err)
	}
	s.metrics.ExpensesDeleted.Inc()

	group, err := s.store.GetGroup(ctx, tomb.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	cur, err := money.LookupCurrency(group.Currency)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Expense deleted", "expense_id", tomb.ExpenseID, "amount", tomb.Amount.Format(cur))

	return connect.NewResponse(&ledgerapi.DeleteExpenseResponse{
		Tombstone: &ledgerapi.ExpenseTombstone{
			ExpenseID: tomb.ExpenseID,
			GroupID:   tomb.GroupID,
			Amount:    tomb.Amount.Decimal(cur),
			PaidBy:    tomb.PaidBy,
			Splits:    toAPISplits(tomb.Splits, cur),
			Reason:    tomb.Reason,
			DeletedAt: tomb.DeletedAt,
		},
	}), nil
}

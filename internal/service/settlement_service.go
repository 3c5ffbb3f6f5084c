package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// RecordSettlement records a payment between two group members.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[ledgerapi.RecordSettlementRequest]) (*connect.Response[ledgerapi.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromMemberID,
		"to", req.Msg.ToMemberID,
		"amount", req.Msg.Amount.String(),
		"status", req.Msg.Status,
	)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("RecordSettlement failed to load group", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	cur, amount, err := parseTotal(group, req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}

	status := models.SettlementPending
	if req.Msg.Status != "" {
		status = models.SettlementStatus(req.Msg.Status)
	}

	settlement := &models.Settlement{
		GroupID:      group.ID,
		FromMemberID: req.Msg.FromMemberID,
		ToMemberID:   req.Msg.ToMemberID,
		Amount:       amount,
		Currency:     cur.Code,
		Status:       status,
		Mode:         req.Msg.Mode,
		Note:         req.Msg.Note,
	}
	if err := calculator.ValidateSettlement(settlement, group.Members); err != nil {
		slog.Error("RecordSettlement validation failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.SettlementsRecorded.WithLabelValues(string(status)).Inc()

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", group.ID,
		"amount", amount.Format(cur),
		"status", status,
	)

	return connect.NewResponse(&ledgerapi.RecordSettlementResponse{Settlement: toAPISettlement(settlement, cur)}), nil
}

// CompleteSettlement moves a pending settlement to completed. Completed is final.
func (s *LedgerService) CompleteSettlement(ctx context.Context, req *connect.Request[ledgerapi.CompleteSettlementRequest]) (*connect.Response[ledgerapi.CompleteSettlementResponse], error) {
	slog.Info("CompleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		slog.Error("CompleteSettlement failed to load settlement", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, connectError(err)
	}
	if settlement.Status == models.SettlementCompleted {
		return nil, connectError(fmt.Errorf("settlement %s: %w", settlement.ID, errSettlementCompleted))
	}

	err = s.store.UpdateSettlementStatus(ctx, settlement.ID, models.SettlementPending, models.SettlementCompleted)
	if errors.Is(err, storage.ErrStatusConflict) {
		slog.Warn("CompleteSettlement lost a race", "settlement_id", settlement.ID, "error", err)
		return nil, connectError(fmt.Errorf("settlement %s: %w", settlement.ID, errSettlementCompleted))
	}
	if err != nil {
		slog.Error("CompleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, connectError(err)
	}
	settlement.Status = models.SettlementCompleted

	cur, err := money.LookupCurrency(settlement.Currency)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Settlement completed", "settlement_id", settlement.ID, "amount", settlement.Amount.Format(cur))

	return connect.NewResponse(&ledgerapi.CompleteSettlementResponse{Settlement: toAPISettlement(settlement, cur)}), nil
}

// ExplainSettlement describes how one settlement moved the group's balances.
// The "before" ledger is the current ledger without that settlement.
func (s *LedgerService) ExplainSettlement(ctx context.Context, req *connect.Request[ledgerapi.ExplainSettlementRequest]) (*connect.Response[ledgerapi.ExplainSettlementResponse], error) {
	slog.Info("ExplainSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		slog.Error("ExplainSettlement failed to load settlement", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, connectError(err)
	}

	group, expenses, settlements, err := s.loadLedger(ctx, settlement.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	others := make([]models.Settlement, 0, len(settlements))
	for _, st := range settlements {
		if st.ID != settlement.ID {
			others = append(others, st)
		}
	}
	before, err := s.tol.CalculateGroupBalances(expenses, others, group.Members)
	if err != nil {
		slog.Error("ExplainSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, connectError(err)
	}
	after, err := s.tol.CalculateGroupBalances(expenses, append(others, *settlement), group.Members)
	if err != nil {
		slog.Error("ExplainSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, connectError(err)
	}

	exp := calculator.ExplainSettlement(*settlement, before, after, group.Members)

	cur, err := money.LookupCurrency(group.Currency)
	if err != nil {
		return nil, connectError(err)
	}
	deltas := make([]ledgerapi.BalanceDelta, len(exp.Deltas))
	for i, d := range exp.Deltas {
		deltas[i] = ledgerapi.BalanceDelta{
			MemberID: d.MemberID,
			Name:     d.Name,
			Before:   d.Before.Decimal(cur),
			After:    d.After.Decimal(cur),
			Delta:    d.Delta.Decimal(cur),
			Reason:   d.Reason,
		}
	}

	slog.Info("ExplainSettlement successful", "settlement_id", settlement.ID, "deltas", len(deltas))

	return connect.NewResponse(&ledgerapi.ExplainSettlementResponse{
		SettlementID: exp.SettlementID,
		Summary:      exp.Summary,
		Deltas:       deltas,
	}), nil
}

package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// GetBalances returns every member's net balance and the payments that
// would settle the group. Results are reused while the ledger is unchanged.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[ledgerapi.GetBalancesRequest]) (*connect.Response[ledgerapi.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	group, expenses, settlements, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetBalances failed to load ledger", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	cur, err := money.LookupCurrency(group.Currency)
	if err != nil {
		return nil, connectError(err)
	}

	hash := ledgerHash(group.Members, expenses, settlements)
	result, ok := s.memo.get(group.ID, hash)
	if ok {
		s.metrics.BalanceLookups.WithLabelValues("hit").Inc()
		slog.Debug("Balances served from memo", "group_id", group.ID, "ledger_hash", hash)
	} else {
		s.metrics.BalanceLookups.WithLabelValues("miss").Inc()
		balances, err := s.tol.CalculateGroupBalances(expenses, settlements, group.Members)
		if err != nil {
			slog.Error("GetBalances failed", "group_id", group.ID, "error", err)
			return nil, connectError(err)
		}
		payments, err := s.tol.OptimizeSettlements(balances, group.Members)
		if err != nil {
			slog.Error("GetBalances optimizer failed", "group_id", group.ID, "error", err)
			return nil, connectError(err)
		}
		result = balanceResult{balances: balances, payments: payments}
		s.memo.put(group.ID, hash, result)
	}

	suggested := make([]ledgerapi.SuggestedPayment, len(result.payments))
	for i, p := range result.payments {
		suggested[i] = ledgerapi.SuggestedPayment{
			FromMemberID: p.FromMemberID,
			ToMemberID:   p.ToMemberID,
			Amount:       p.Amount.Decimal(cur),
		}
	}

	slog.Info("GetBalances successful",
		"group_id", group.ID,
		"members", len(result.balances),
		"suggested_payments", len(suggested),
	)

	return connect.NewResponse(&ledgerapi.GetBalancesResponse{
		Currency:          cur.Code,
		Balances:          toAPIBalances(result.balances, group.Members, cur),
		SuggestedPayments: suggested,
		LedgerHash:        hash,
	}), nil
}

// ValidateLedger audits a group's ledger without failing on bad records.
func (s *LedgerService) ValidateLedger(ctx context.Context, req *connect.Request[ledgerapi.ValidateLedgerRequest]) (*connect.Response[ledgerapi.ValidateLedgerResponse], error) {
	slog.Info("ValidateLedger request received", "group_id", req.Msg.GroupID)

	group, expenses, settlements, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ValidateLedger failed to load ledger", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	cur, err := money.LookupCurrency(group.Currency)
	if err != nil {
		return nil, connectError(err)
	}

	audit := s.tol.ValidateLedger(group.Currency, expenses, settlements, group.Members)
	s.metrics.LedgerAudits.WithLabelValues(string(audit.Status)).Inc()

	if audit.Status != models.AuditOK {
		slog.Warn("Ledger audit found problems",
			"group_id", group.ID,
			"status", audit.Status,
			"residual", audit.Residual.Format(cur),
		)
	} else {
		slog.Info("ValidateLedger successful", "group_id", group.ID)
	}

	return connect.NewResponse(&ledgerapi.ValidateLedgerResponse{
		Status:   string(audit.Status),
		Residual: audit.Residual.Decimal(cur),
		Lines:    audit.Lines,
		Balances: toAPIBalances(audit.Balances, group.Members, cur),
	}), nil
}

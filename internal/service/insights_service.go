package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

const (
	defaultInsightMonths = 6
	maxInsightMonths     = 120
)

// GetInsights grades a group's fairness and data quality and summarizes its
// spending by month and category.
func (s *LedgerService) GetInsights(ctx context.Context, req *connect.Request[ledgerapi.GetInsightsRequest]) (*connect.Response[ledgerapi.GetInsightsResponse], error) {
	slog.Info("GetInsights request received", "group_id", req.Msg.GroupID, "months", req.Msg.Months)

	months := req.Msg.Months
	if months == 0 {
		months = defaultInsightMonths
	}
	if months < 0 || months > maxInsightMonths {
		return nil, invalidArgument(fmt.Errorf("months must be between 1 and %d, got %d", maxInsightMonths, months))
	}

	group, expenses, settlements, err := s.loadLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetInsights failed to load ledger", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	if req.Msg.MemberID != "" {
		if err := requireMembers(group, []string{req.Msg.MemberID}, "insights filter"); err != nil {
			return nil, connectError(err)
		}
	}
	cur, err := money.LookupCurrency(group.Currency)
	if err != nil {
		return nil, connectError(err)
	}

	balances, err := s.tol.CalculateGroupBalances(expenses, settlements, group.Members)
	if err != nil {
		slog.Error("GetInsights failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	now := s.now()
	var from, to time.Time
	if req.Msg.From != 0 {
		from = time.Unix(req.Msg.From, 0)
	}
	if req.Msg.To != 0 {
		to = time.Unix(req.Msg.To, 0)
	}

	fairness := calculator.FairnessScore(expenses, group.Members, balances)
	reliability := s.tol.ReliabilityScore(expenses, settlements)
	trend := calculator.SpendingTrend(expenses, req.Msg.MemberID, now.Location())

	slog.Info("GetInsights successful",
		"group_id", group.ID,
		"fairness", fairness.Score,
		"reliability", reliability.Score,
		"pattern", trend.Pattern,
	)

	return connect.NewResponse(&ledgerapi.GetInsightsResponse{
		Currency:      cur.Code,
		Fairness:      toAPIFairness(fairness),
		Reliability:   toAPIReliability(reliability),
		MonthlyTotals: toAPIMonthlyTotals(calculator.MonthlyTotals(expenses, now, months), cur),
		Categories:    toAPICategories(calculator.CategoryBreakdown(expenses, from, to), cur),
		Trend: ledgerapi.SpendingTrend{
			AveragePerMonth: trend.AveragePerMonth.Decimal(cur),
			TrendPercent:    trend.TrendPercent,
			Pattern:         trend.Pattern,
			TotalExpenses:   trend.TotalExpenses,
			Months:          toAPIMonthlyTotals(trend.Months, cur),
		},
	}), nil
}

func toAPIFairness(r models.FairnessReport) ledgerapi.FairnessReport {
	return ledgerapi.FairnessReport{
		Score:               r.Score,
		Level:               r.Level,
		PaymentDistribution: r.PaymentDistribution,
		SplitEquality:       r.SplitEquality,
		BalanceDistribution: r.BalanceDistribution,
		Issues:              r.Issues,
		Recommendations:     r.Recommendations,
	}
}

func toAPIReliability(r models.ReliabilityReport) ledgerapi.ReliabilityReport {
	return ledgerapi.ReliabilityReport{
		Score:                  r.Score,
		Level:                  r.Level,
		DataCompleteness:       r.DataCompleteness,
		SplitAccuracy:          r.SplitAccuracy,
		SettlementCompleteness: r.SettlementCompleteness,
		Warnings:               r.Warnings,
	}
}

func toAPIMonthlyTotals(totals []models.MonthlyTotal, cur money.Currency) []ledgerapi.MonthlyTotal {
	out := make([]ledgerapi.MonthlyTotal, len(totals))
	for i, t := range totals {
		out[i] = ledgerapi.MonthlyTotal{
			Year:   t.Year,
			Month:  int(t.Month),
			Amount: t.Amount.Decimal(cur),
			Count:  t.Count,
		}
	}
	return out
}

func toAPICategories(totals []models.CategoryTotal, cur money.Currency) []ledgerapi.CategoryTotal {
	out := make([]ledgerapi.CategoryTotal, len(totals))
	for i, t := range totals {
		out[i] = ledgerapi.CategoryTotal{Category: t.Category, Amount: t.Amount.Decimal(cur), Count: t.Count}
	}
	return out
}

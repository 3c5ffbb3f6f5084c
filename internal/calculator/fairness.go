package calculator

import (
	"math"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// FairnessScore grades how evenly a group shares its costs, from three
// factors:
//   - payment distribution: how far each member's payments are from an
//     equal share of the total
//   - split equality: how often splits deviate more than 10% from the
//     expense's average share
//   - balance distribution: how large the outstanding balances are relative
//     to an equal share
//
// The overall score weighs them 40/30/30. Ratios are unitless, so the
// computation works on minor units directly.
func FairnessScore(expenses []models.Expense, members []models.Member, balances []models.GroupBalance) models.FairnessReport {
	if len(expenses) == 0 {
		return models.FairnessReport{
			Score:               100,
			Level:               "excellent",
			PaymentDistribution: 100,
			SplitEquality:       100,
			BalanceDistribution: 100,
			Recommendations:     []string{"Add expenses to calculate fairness score"},
		}
	}

	var total money.Amount
	paid := make(map[string]money.Amount, len(members))
	for _, e := range expenses {
		total += e.Amount
		paid[e.PaidBy] += e.Amount
	}
	var expected float64
	if len(members) > 0 {
		expected = float64(total) / float64(len(members))
	}

	var paymentDeviation float64
	for _, m := range members {
		if expected > 0 {
			paymentDeviation += math.Abs(float64(paid[m.ID])-expected) / expected
		}
	}
	if len(members) > 0 {
		paymentDeviation /= float64(len(members))
	}
	payment := math.Max(0, 100-paymentDeviation*100)

	var inequalities []float64
	for _, e := range expenses {
		if len(e.Splits) < 2 {
			continue
		}
		avg := float64(e.SplitTotal()) / float64(len(e.Splits))
		if avg <= 0 {
			continue
		}
		var maxDeviation float64
		for _, s := range e.Splits {
			maxDeviation = math.Max(maxDeviation, math.Abs(float64(s.Amount)-avg))
		}
		if ratio := maxDeviation / avg; ratio > 0.1 {
			inequalities = append(inequalities, ratio)
		}
	}
	split := 100.0
	if len(inequalities) > 0 {
		split = math.Max(0, 100-mean(inequalities)*200)
	}

	var balanceDeviation float64
	for _, b := range balances {
		if expected > 0 {
			balanceDeviation += math.Abs(float64(b.Balance)) / expected
		}
	}
	if len(balances) > 0 {
		balanceDeviation /= float64(len(balances))
	}
	balance := math.Max(0, 100-balanceDeviation*50)

	report := models.FairnessReport{
		Score:               roundScore(payment*0.4 + split*0.3 + balance*0.3),
		PaymentDistribution: roundScore(payment),
		SplitEquality:       roundScore(split),
		BalanceDistribution: roundScore(balance),
	}
	switch {
	case report.Score < 50:
		report.Level = "unfair"
	case report.Score < 70:
		report.Level = "poor"
	case report.Score < 85:
		report.Level = "fair"
	case report.Score < 95:
		report.Level = "good"
	default:
		report.Level = "excellent"
	}

	if payment < 70 {
		report.Issues = append(report.Issues, "Uneven payment distribution - some people pay more than others")
	}
	if split < 70 {
		report.Issues = append(report.Issues, "Many unequal splits - consider using equal splits more often")
	}
	if balance < 70 {
		report.Issues = append(report.Issues, "Unbalanced final balances - consider settling up")
	}

	if payment < 80 {
		report.Recommendations = append(report.Recommendations, "Try to distribute expenses more evenly among group members")
	}
	if split < 80 {
		report.Recommendations = append(report.Recommendations, "Use equal splits when possible for fairness")
	}
	if balance < 80 {
		report.Recommendations = append(report.Recommendations, "Settle outstanding balances to maintain fairness")
	}
	if len(report.Issues) == 0 {
		report.Recommendations = append(report.Recommendations, "Great job! Your group maintains fair expense splitting")
	}
	return report
}

// ReliabilityScore grades the quality of the ledger data: expenses with a
// description, a positive amount and splits; splits that add up within the
// tolerance; settlements that were completed. Weighted 40/40/20.
func (tol Tolerance) ReliabilityScore(expenses []models.Expense, settlements []models.Settlement) models.ReliabilityReport {
	if len(expenses) == 0 {
		return models.ReliabilityReport{
			Level:    "low",
			Warnings: []string{"No expenses recorded yet"},
		}
	}

	var complete, accurate int
	for _, e := range expenses {
		if e.Description != "" && e.Amount > 0 && len(e.Splits) > 0 {
			complete++
		}
		if len(e.Splits) > 0 && tol.VerifySplitsSum(e.Splits, e.Amount) {
			accurate++
		}
	}
	completeness := percentOf(complete, len(expenses))
	accuracy := percentOf(accurate, len(expenses))

	settled := 100.0
	if len(settlements) > 0 {
		var done int
		for _, s := range settlements {
			if s.Status == models.SettlementCompleted {
				done++
			}
		}
		settled = percentOf(done, len(settlements))
	}

	report := models.ReliabilityReport{
		Score:                  roundScore(completeness*0.4 + accuracy*0.4 + settled*0.2),
		DataCompleteness:       roundScore(completeness),
		SplitAccuracy:          roundScore(accuracy),
		SettlementCompleteness: roundScore(settled),
	}
	switch {
	case report.Score < 70:
		report.Level = "low"
	case report.Score < 85:
		report.Level = "medium"
	default:
		report.Level = "high"
	}

	if completeness < 90 {
		report.Warnings = append(report.Warnings, "Some expenses are missing descriptions or splits")
	}
	if accuracy < 95 {
		report.Warnings = append(report.Warnings, "Some expense splits do not match the total amount")
	}
	if settled < 100 {
		report.Warnings = append(report.Warnings, "Some settlements are marked as pending")
	}
	if len(report.Warnings) == 0 {
		report.Warnings = append(report.Warnings, "All data looks accurate and complete")
	}
	return report
}

// ReliabilityScore grades the ledger data with DefaultTolerance.
func ReliabilityScore(expenses []models.Expense, settlements []models.Settlement) models.ReliabilityReport {
	return DefaultTolerance.ReliabilityScore(expenses, settlements)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func percentOf(n, total int) float64 {
	return float64(n) / float64(total) * 100
}

// roundScore rounds half to even.
func roundScore(f float64) int {
	return int(math.RoundToEven(f))
}

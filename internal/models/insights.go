package models

import (
	"time"

	"github.com/mmynk/splitledger/internal/money"
)

// FairnessReport grades how evenly a group shares its costs. Scores run
// from 0 to 100.
type FairnessReport struct {
	Score int

	// Level is one of unfair, poor, fair, good or excellent.
	Level string

	PaymentDistribution int
	SplitEquality       int
	BalanceDistribution int

	Issues          []string
	Recommendations []string
}

// ReliabilityReport grades how complete and consistent the ledger data is.
type ReliabilityReport struct {
	Score int

	// Level is one of low, medium or high.
	Level string

	DataCompleteness       int
	SplitAccuracy          int
	SettlementCompleteness int

	Warnings []string
}

// MonthlyTotal is the spending of one calendar month.
type MonthlyTotal struct {
	Year   int
	Month  time.Month
	Amount money.Amount
	Count  int
}

// CategoryTotal is the spending in one expense category.
type CategoryTotal struct {
	Category string
	Amount   money.Amount
	Count    int
}

// SpendingTrend summarizes how spending moves from month to month.
type SpendingTrend struct {
	AveragePerMonth money.Amount

	// TrendPercent compares the last two active months with the two before,
	// rounded to two decimals. Zero with fewer than four active months.
	TrendPercent float64

	// Pattern is one of consistent, increasing, decreasing or sporadic.
	Pattern string

	TotalExpenses int

	// Months lists only the months that had spending, oldest first.
	Months []MonthlyTotal
}

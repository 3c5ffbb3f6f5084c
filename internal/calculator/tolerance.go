package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Tolerance holds the thresholds used when comparing amounts.
type Tolerance struct {
	// Minor is the largest accepted difference in minor units.
	Minor money.Amount

	// Percent is how far percentage weights may drift from 100.
	Percent decimal.Decimal
}

// DefaultTolerance is one minor unit and 0.1 percentage points.
var DefaultTolerance = Tolerance{
	Minor:   1,
	Percent: decimal.New(1, -1),
}

// VerifySplitsSum reports whether splits add up to total within the tolerance.
func (tol Tolerance) VerifySplitsSum(splits []models.Split, total money.Amount) bool {
	return money.Within(sumSplits(splits), total, tol.Minor)
}

// VerifySplitsSum checks splits against total using DefaultTolerance.
func VerifySplitsSum(splits []models.Split, total money.Amount) bool {
	return DefaultTolerance.VerifySplitsSum(splits, total)
}

func sumSplits(splits []models.Split) money.Amount {
	var total money.Amount
	for _, s := range splits {
		total += s.Amount
	}
	return total
}

package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SplitMode selects how an expense total is divided.
type SplitMode string

const (
	SplitEqual      SplitMode = "equal"
	SplitPercentage SplitMode = "percentage"
	SplitShares     SplitMode = "shares"
	SplitCustom     SplitMode = "custom"
)

// ParseSplitMode validates a mode coming from a request.
func ParseSplitMode(s string) (SplitMode, error) {
	switch m := SplitMode(s); m {
	case SplitEqual, SplitPercentage, SplitShares, SplitCustom:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Weight is one member's weight in a percentage or shares split.
type Weight struct {
	MemberID string
	Value    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// NormalizeEqualSplit divides total evenly among memberIDs.
// The remainder goes one minor unit at a time to members in input order, so
// 100.00 over three members gives 33.34, 33.33, 33.33.
func NormalizeEqualSplit(total money.Amount, memberIDs []string) ([]models.Split, error) {
	if total <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if len(memberIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if err := checkUnique(memberIDs); err != nil {
		return nil, err
	}

	n := money.Amount(len(memberIDs))
	base := total / n
	splits := make([]models.Split, len(memberIDs))
	for i, id := range memberIDs {
		splits[i] = models.Split{MemberID: id, Amount: base}
	}
	distributeRemainder(splits, nil, total-base*n)
	return splits, nil
}

// NormalizeWeightedSplit divides total in proportion to weights using
// DefaultTolerance for percentage validation.
func NormalizeWeightedSplit(total money.Amount, mode SplitMode, weights []Weight) ([]models.Split, error) {
	return DefaultTolerance.NormalizeWeightedSplit(total, mode, weights)
}

// NormalizeWeightedSplit divides total in proportion to weights.
//
// In percentage mode the weights must add up to 100 within tol.Percent; in
// shares mode they must be non-negative integers that are not all zero. Each
// raw share total*weight/totalWeight is rounded down to the minor unit, then
// the leftover units go one at a time to the first members with a non-zero
// weight, the same way NormalizeEqualSplit hands out its remainder.
func (tol Tolerance) NormalizeWeightedSplit(total money.Amount, mode SplitMode, weights []Weight) ([]models.Split, error) {
	if total <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if len(weights) == 0 {
		return nil, ErrNoParticipants
	}
	ids := make([]string, len(weights))
	values := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		ids[i] = w.MemberID
		values[i] = w.Value
	}
	if err := checkUnique(ids); err != nil {
		return nil, err
	}
	if err := tol.validateWeights(mode, weights); err != nil {
		return nil, err
	}
	return apportion(total, ids, values), nil
}

func (tol Tolerance) validateWeights(mode SplitMode, weights []Weight) error {
	sum := decimal.Zero
	for _, w := range weights {
		if w.Value.IsNegative() {
			return &InvalidWeightError{Reason: fmt.Sprintf("negative weight %s for %s", w.Value, w.MemberID)}
		}
		if mode == SplitShares && !w.Value.IsInteger() {
			return &InvalidWeightError{Reason: fmt.Sprintf("share count %s for %s is not a whole number", w.Value, w.MemberID)}
		}
		sum = sum.Add(w.Value)
	}

	switch mode {
	case SplitPercentage:
		if sum.Sub(hundred).Abs().GreaterThan(tol.Percent) {
			return &InvalidWeightError{Reason: fmt.Sprintf("percentages sum to %s, expected 100", sum)}
		}
	case SplitShares:
		if sum.IsZero() {
			return &InvalidWeightError{Reason: "all share weights are zero"}
		}
	default:
		return &InvalidWeightError{Reason: fmt.Sprintf("mode %q does not take weights", mode)}
	}
	return nil
}

// NormalizeCustomSplit accepts caller-supplied amounts using DefaultTolerance.
func NormalizeCustomSplit(amounts []models.Split, total money.Amount) ([]models.Split, error) {
	return DefaultTolerance.NormalizeCustomSplit(amounts, total)
}

// NormalizeCustomSplit accepts caller-supplied amounts as long as they add up
// to total within tol.Minor. A residual inside the tolerance is absorbed by
// the first participating members so the result sums to total exactly.
// Anything further off is a *SplitMismatchError; the caller decides between
// AdjustCustomSplit, an equal split, or rejecting the expense.
func (tol Tolerance) NormalizeCustomSplit(amounts []models.Split, total money.Amount) ([]models.Split, error) {
	if total <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if len(amounts) == 0 {
		return nil, ErrNoParticipants
	}
	ids := make([]string, len(amounts))
	for i, a := range amounts {
		if a.Amount < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, a.MemberID)
		}
		ids[i] = a.MemberID
	}
	if err := checkUnique(ids); err != nil {
		return nil, err
	}

	sum := sumSplits(amounts)
	if !money.Within(sum, total, tol.Minor) {
		return nil, &SplitMismatchError{Total: total, Sum: sum}
	}

	splits := make([]models.Split, len(amounts))
	copy(splits, amounts)
	eligible := make([]bool, len(splits))
	for i, s := range splits {
		eligible[i] = s.Amount > 0
	}
	distributeRemainder(splits, eligible, total-sum)
	return splits, nil
}

// AdjustCustomSplit scales custom amounts proportionally so they sum to total.
// It is the "auto-adjust" remedy for a SplitMismatchError.
func AdjustCustomSplit(amounts []models.Split, total money.Amount) ([]models.Split, error) {
	if total <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if len(amounts) == 0 {
		return nil, ErrNoParticipants
	}
	ids := make([]string, len(amounts))
	values := make([]decimal.Decimal, len(amounts))
	var sum money.Amount
	for i, a := range amounts {
		if a.Amount < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, a.MemberID)
		}
		ids[i] = a.MemberID
		values[i] = decimal.NewFromInt(int64(a.Amount))
		sum += a.Amount
	}
	if err := checkUnique(ids); err != nil {
		return nil, err
	}
	if sum == 0 {
		return nil, &InvalidWeightError{Reason: "all custom amounts are zero"}
	}
	return apportion(total, ids, values), nil
}

// apportion splits total by weight, rounding every share down and handing
// the leftover units out in order. weights must not sum to zero.
func apportion(total money.Amount, ids []string, weights []decimal.Decimal) []models.Split {
	totalWeight := decimal.Sum(decimal.Zero, weights...)
	totalDec := decimal.NewFromInt(int64(total))

	splits := make([]models.Split, len(ids))
	eligible := make([]bool, len(ids))
	var assigned money.Amount
	for i, id := range ids {
		share := totalDec.Mul(weights[i]).Div(totalWeight).Floor()
		splits[i] = models.Split{MemberID: id, Amount: money.Amount(share.IntPart())}
		eligible[i] = weights[i].IsPositive()
		assigned += splits[i].Amount
	}
	distributeRemainder(splits, eligible, total-assigned)
	return splits
}

// distributeRemainder moves diff minor units onto splits one unit at a time,
// in order, skipping ineligible entries. A nil eligible slice means all are
// eligible, and so is every entry once no eligible one can move. Negative
// diffs are taken back from splits that are above zero.
func distributeRemainder(splits []models.Split, eligible []bool, diff money.Amount) {
	for diff != 0 {
		moved := false
		for i := range splits {
			if diff == 0 {
				break
			}
			if eligible != nil && !eligible[i] {
				continue
			}
			switch {
			case diff > 0:
				splits[i].Amount++
				diff--
				moved = true
			case splits[i].Amount > 0:
				splits[i].Amount--
				diff++
				moved = true
			}
		}
		if !moved {
			if eligible == nil {
				return
			}
			eligible = nil
		}
	}
}

func checkUnique(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, id)
		}
		seen[id] = true
	}
	return nil
}

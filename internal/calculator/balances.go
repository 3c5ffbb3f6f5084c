package calculator

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// CalculateGroupBalances computes balances with DefaultTolerance.
func CalculateGroupBalances(expenses []models.Expense, settlements []models.Settlement, members []models.Member) ([]models.GroupBalance, error) {
	return DefaultTolerance.CalculateGroupBalances(expenses, settlements, members)
}

// CalculateGroupBalances derives every member's net balance from the full
// ledger. The result has one entry per member, in member order.
//
// Algorithm:
//   - For each expense: the payer is credited the amount, each split member
//     is debited their share
//   - For each completed settlement: the payer moves toward zero (credited),
//     the receiver moves away from it (debited); pending ones are ignored
//   - balance = (paid - owed) + (settled_out - settled_in)
//
// Every expense and settlement cancels out across the group, so the balances
// always sum to zero. A record that would break that (a split or settlement
// naming a non-member, splits that do not add up) is returned as an error
// rather than skipped.
func (tol Tolerance) CalculateGroupBalances(expenses []models.Expense, settlements []models.Settlement, members []models.Member) ([]models.GroupBalance, error) {
	index, err := memberIndex(members)
	if err != nil {
		return nil, err
	}

	balances := make([]models.GroupBalance, len(members))
	for i, m := range members {
		balances[i].MemberID = m.ID
	}

	for i := range expenses {
		e := &expenses[i]
		if err := tol.validateExpense(e, index); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		balances[index[e.PaidBy]].Balance += e.Amount
		for _, s := range e.Splits {
			balances[index[s.MemberID]].Balance -= s.Amount
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if err := validateSettlement(s, index); err != nil {
			return nil, fmt.Errorf("settlement %s: %w", s.ID, err)
		}
		if s.Status != models.SettlementCompleted {
			continue
		}
		balances[index[s.FromMemberID]].Balance += s.Amount
		balances[index[s.ToMemberID]].Balance -= s.Amount
	}

	return balances, nil
}

// ValidateExpense checks an expense against the group before it is stored.
func (tol Tolerance) ValidateExpense(e *models.Expense, members []models.Member) error {
	index, err := memberIndex(members)
	if err != nil {
		return err
	}
	return tol.validateExpense(e, index)
}

// ValidateSettlement checks a settlement against the group before it is stored.
func ValidateSettlement(s *models.Settlement, members []models.Member) error {
	index, err := memberIndex(members)
	if err != nil {
		return err
	}
	return validateSettlement(s, index)
}

func (tol Tolerance) validateExpense(e *models.Expense, index map[string]int) error {
	if e.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if _, ok := index[e.PaidBy]; !ok {
		return &MissingMemberError{MemberID: e.PaidBy, Context: "payer"}
	}
	if len(e.Splits) == 0 {
		return ErrNoParticipants
	}
	seen := make(map[string]bool, len(e.Splits))
	for _, s := range e.Splits {
		if _, ok := index[s.MemberID]; !ok {
			return &MissingMemberError{MemberID: s.MemberID, Context: "split"}
		}
		if seen[s.MemberID] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, s.MemberID)
		}
		seen[s.MemberID] = true
		if s.Amount < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeAmount, s.MemberID)
		}
	}
	if !tol.VerifySplitsSum(e.Splits, e.Amount) {
		return &SplitMismatchError{Total: e.Amount, Sum: e.SplitTotal()}
	}
	return nil
}

func validateSettlement(s *models.Settlement, index map[string]int) error {
	if s.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, s.Status)
	}
	if _, ok := index[s.FromMemberID]; !ok {
		return &MissingMemberError{MemberID: s.FromMemberID, Context: "settlement payer"}
	}
	if _, ok := index[s.ToMemberID]; !ok {
		return &MissingMemberError{MemberID: s.ToMemberID, Context: "settlement receiver"}
	}
	if s.FromMemberID == s.ToMemberID {
		return ErrSelfSettlement
	}
	return nil
}

// memberIndex maps member IDs to their position in the group.
func memberIndex(members []models.Member) (map[string]int, error) {
	index := make(map[string]int, len(members))
	for i, m := range members {
		if _, dup := index[m.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, m.ID)
		}
		index[m.ID] = i
	}
	return index, nil
}

// SumBalances adds up a balance snapshot. For a consistent ledger it is zero.
func SumBalances(balances []models.GroupBalance) money.Amount {
	var total money.Amount
	for _, b := range balances {
		total += b.Balance
	}
	return total
}

package calculator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// OptimizeSettlements suggests payments with DefaultTolerance.
func OptimizeSettlements(balances []models.GroupBalance, members []models.Member) ([]models.SuggestedPayment, error) {
	return DefaultTolerance.OptimizeSettlements(balances, members)
}

// party is a creditor or debtor still waiting to be settled. amount is
// always positive.
type party struct {
	id     string
	amount money.Amount
	rank   int
}

// OptimizeSettlements computes a small set of payments that zeroes every
// balance (debt simplification).
//
// Algorithm (greedy, largest magnitude first):
//   - Members at exactly zero are ignored
//   - Take the largest creditor and the largest debtor, pay min(credit, debt)
//   - Drop whoever reached zero, re-sort, repeat
//
// Amounts are exact minor units, so the tolerance only bounds how far total
// credit and total debit may disagree. Small balances are still paid: several
// one-unit debts can add up to more than the tolerance.
//
// Ties are broken by member order so results are reproducible. Each round
// clears at least one party, so at most n-1 payments are emitted for n
// non-zero members. The heuristic is not guaranteed to reach the global
// minimum number of payments for four or more members (that problem is
// NP-hard in general).
//
// Payments are returned by descending amount. Balances whose credit and
// debit totals differ by more than the tolerance are rejected with a
// *LedgerInconsistencyError.
func (tol Tolerance) OptimizeSettlements(balances []models.GroupBalance, members []models.Member) ([]models.SuggestedPayment, error) {
	index, err := memberIndex(members)
	if err != nil {
		return nil, err
	}

	var creditors, debtors []party
	var credit, debit money.Amount
	seen := make(map[string]bool, len(balances))
	for _, b := range balances {
		rank, ok := index[b.MemberID]
		if !ok {
			return nil, &MissingMemberError{MemberID: b.MemberID, Context: "balance"}
		}
		if seen[b.MemberID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, b.MemberID)
		}
		seen[b.MemberID] = true

		if b.Balance > 0 {
			credit += b.Balance
		} else {
			debit -= b.Balance
		}

		switch {
		case b.Balance > 0:
			creditors = append(creditors, party{id: b.MemberID, amount: b.Balance, rank: rank})
		case b.Balance < 0:
			debtors = append(debtors, party{id: b.MemberID, amount: -b.Balance, rank: rank})
		}
	}

	if !money.Within(credit, debit, tol.Minor) {
		return nil, &LedgerInconsistencyError{Credit: credit, Debit: debit}
	}

	var payments []models.SuggestedPayment
	for len(creditors) > 0 && len(debtors) > 0 {
		sortParties(creditors)
		sortParties(debtors)

		c, d := &creditors[0], &debtors[0]
		amount := min(c.amount, d.amount)
		payments = append(payments, models.SuggestedPayment{
			FromMemberID: d.id,
			ToMemberID:   c.id,
			Amount:       amount,
		})
		c.amount -= amount
		d.amount -= amount

		if c.amount == 0 {
			creditors = creditors[1:]
		}
		if d.amount == 0 {
			debtors = debtors[1:]
		}
	}

	slices.SortStableFunc(payments, func(a, b models.SuggestedPayment) int {
		return cmp.Compare(b.Amount, a.Amount)
	})
	return payments, nil
}

func sortParties(ps []party) {
	slices.SortStableFunc(ps, func(a, b party) int {
		if a.amount != b.amount {
			return cmp.Compare(b.amount, a.amount)
		}
		return cmp.Compare(a.rank, b.rank)
	})
}

// ApplyPayments returns the balances that would result from executing the
// suggested payments.
func ApplyPayments(balances []models.GroupBalance, payments []models.SuggestedPayment) []models.GroupBalance {
	out := make([]models.GroupBalance, len(balances))
	copy(out, balances)
	pos := make(map[string]int, len(out))
	for i, b := range out {
		pos[b.MemberID] = i
	}
	for _, p := range payments {
		if i, ok := pos[p.FromMemberID]; ok {
			out[i].Balance += p.Amount
		}
		if i, ok := pos[p.ToMemberID]; ok {
			out[i].Balance -= p.Amount
		}
	}
	return out
}

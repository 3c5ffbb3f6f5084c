package calculator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ValidateLedger recomputes balances the forgiving way and records every
// step. Unlike CalculateGroupBalances it never fails: unknown members are
// skipped with a warning and drifting splits are reported, so the audit can
// be used to find out why a ledger does not balance.
//
// Status is ok when the residual is within tolerance, warn when it is under
// one major currency unit, error otherwise.
func (tol Tolerance) ValidateLedger(currency string, expenses []models.Expense, settlements []models.Settlement, members []models.Member) models.LedgerAudit {
	cur := currencyOf(currency)
	name := func(id string) string { return models.MemberName(members, id) }

	var audit models.LedgerAudit
	logf := func(format string, args ...any) {
		audit.Lines = append(audit.Lines, fmt.Sprintf(format, args...))
	}

	pos := make(map[string]int, len(members))
	balances := make([]models.GroupBalance, 0, len(members))
	for _, m := range members {
		if _, dup := pos[m.ID]; dup {
			logf("WARNING: member %s listed twice", m.ID)
			continue
		}
		pos[m.ID] = len(balances)
		balances = append(balances, models.GroupBalance{MemberID: m.ID})
	}

	for _, e := range expenses {
		i, ok := pos[e.PaidBy]
		if !ok {
			logf("WARNING: expense %s paid by unknown member %s, skipped", e.ID, e.PaidBy)
			continue
		}
		balances[i].Balance += e.Amount
		logf("Expense %s: %s paid %s", e.ID, name(e.PaidBy), e.Amount.Format(cur))

		var counted money.Amount
		for _, s := range e.Splits {
			j, ok := pos[s.MemberID]
			if !ok {
				logf("  WARNING: split for unknown member %s (%s) ignored", s.MemberID, s.Amount.Format(cur))
				continue
			}
			balances[j].Balance -= s.Amount
			counted += s.Amount
			logf("  -> %s owes %s", name(s.MemberID), s.Amount.Format(cur))
		}
		if !money.Within(counted, e.Amount, tol.Minor) {
			logf("  WARNING: splits sum to %s but expense is %s (diff %s)",
				counted.Format(cur), e.Amount.Format(cur), (counted - e.Amount).Abs().Format(cur))
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			logf("Settlement %s: %s -> %s %s is %s, not applied", s.ID, name(s.FromMemberID), name(s.ToMemberID), s.Amount.Format(cur), s.Status)
			continue
		}
		i, okFrom := pos[s.FromMemberID]
		j, okTo := pos[s.ToMemberID]
		if !okFrom || !okTo {
			logf("WARNING: settlement %s references unknown member, skipped", s.ID)
			continue
		}
		balances[i].Balance += s.Amount
		balances[j].Balance -= s.Amount
		logf("Settlement %s: %s -> %s: %s", s.ID, name(s.FromMemberID), name(s.ToMemberID), s.Amount.Format(cur))
	}

	logf("Balance summary:")
	sorted := slices.Clone(balances)
	slices.SortStableFunc(sorted, func(a, b models.GroupBalance) int {
		return cmp.Compare(b.Balance, a.Balance)
	})
	for _, b := range sorted {
		switch {
		case b.Balance > tol.Minor:
			logf("  %s: gets %s", name(b.MemberID), b.Balance.Format(cur))
		case b.Balance < -tol.Minor:
			logf("  %s: owes %s", name(b.MemberID), (-b.Balance).Format(cur))
		}
	}

	audit.Balances = balances
	audit.Residual = SumBalances(balances)
	logf("Invariant check: balances sum to %s (should be zero)", signedOrZero(audit.Residual, cur))

	majorUnit := money.Amount(1)
	for range cur.Exponent {
		majorUnit *= 10
	}
	switch {
	case audit.Residual.Abs() <= tol.Minor:
		audit.Status = models.AuditOK
	case audit.Residual.Abs() < majorUnit:
		audit.Status = models.AuditWarn
		logf("WARNING: small rounding error detected")
	default:
		audit.Status = models.AuditError
		logf("ERROR: balances do not sum to zero, ledger data is corrupt")
	}
	return audit
}

// ValidateLedger audits with DefaultTolerance.
func ValidateLedger(currency string, expenses []models.Expense, settlements []models.Settlement, members []models.Member) models.LedgerAudit {
	return DefaultTolerance.ValidateLedger(currency, expenses, settlements, members)
}

func signedOrZero(a money.Amount, cur money.Currency) string {
	if a == 0 {
		return a.Format(cur)
	}
	return signed(a, cur)
}

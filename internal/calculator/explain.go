package calculator

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ExplainSettlement describes how a single settlement moved the balances
// from before to after. A member missing from either snapshot counts as
// zero there. Only members whose balance changed are listed: the payer
// first, then the receiver, then everyone else in member order.
func ExplainSettlement(s models.Settlement, before, after []models.GroupBalance, members []models.Member) models.Explanation {
	cur := currencyOf(s.Currency)
	from := models.MemberName(members, s.FromMemberID)
	to := models.MemberName(members, s.ToMemberID)
	paid := fmt.Sprintf("%s paid %s %s", from, to, s.Amount.Format(cur))

	beforeByID := balanceMap(before)
	afterByID := balanceMap(after)

	exp := models.Explanation{SettlementID: s.ID}
	switch {
	case s.Status != models.SettlementCompleted:
		exp.Summary = fmt.Sprintf("%s's payment of %s to %s is %s and has not changed any balance", from, s.Amount.Format(cur), to, s.Status)
	case s.Mode != "":
		exp.Summary = fmt.Sprintf("%s via %s", paid, s.Mode)
	default:
		exp.Summary = paid
	}

	for _, id := range explainOrder(s, before, after, members) {
		b, a := beforeByID[id], afterByID[id]
		if a == b {
			continue
		}
		name := models.MemberName(members, id)

		var reason string
		switch id {
		case s.FromMemberID:
			reason = payerReason(paid, name, b, a, cur)
		case s.ToMemberID:
			reason = receiverReason(paid, name, b, a, cur)
		default:
			reason = fmt.Sprintf("%s's balance changed by %s for reasons other than this settlement", name, signed(a-b, cur))
		}

		exp.Deltas = append(exp.Deltas, models.BalanceDelta{
			MemberID: id,
			Name:     name,
			Before:   b,
			After:    a,
			Delta:    a - b,
			Reason:   reason,
		})
	}
	return exp
}

func payerReason(paid, name string, before, after money.Amount, cur money.Currency) string {
	switch {
	case before < 0 && after < 0:
		return fmt.Sprintf("%s, reducing what %s owes from %s to %s", paid, name, (-before).Format(cur), (-after).Format(cur))
	case before < 0 && after == 0:
		return fmt.Sprintf("%s, clearing what %s owed", paid, name)
	case before < 0:
		return fmt.Sprintf("%s, clearing what %s owed; %s is now owed %s", paid, name, name, after.Format(cur))
	default:
		return fmt.Sprintf("%s, increasing what %s is owed to %s", paid, name, after.Format(cur))
	}
}

func receiverReason(paid, name string, before, after money.Amount, cur money.Currency) string {
	switch {
	case before > 0 && after > 0:
		return fmt.Sprintf("%s, reducing what %s is owed from %s to %s", paid, name, before.Format(cur), after.Format(cur))
	case before > 0 && after == 0:
		return fmt.Sprintf("%s, clearing what %s was owed", paid, name)
	case before > 0:
		return fmt.Sprintf("%s, clearing what %s was owed; %s now owes %s", paid, name, name, (-after).Format(cur))
	default:
		return fmt.Sprintf("%s, increasing what %s owes to %s", paid, name, (-after).Format(cur))
	}
}

// explainOrder lists every member ID seen in either snapshot, payer and
// receiver first.
func explainOrder(s models.Settlement, before, after []models.GroupBalance, members []models.Member) []string {
	var order []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	add(s.FromMemberID)
	add(s.ToMemberID)
	for _, m := range members {
		add(m.ID)
	}
	for _, b := range before {
		add(b.MemberID)
	}
	for _, b := range after {
		add(b.MemberID)
	}
	return order
}

func balanceMap(balances []models.GroupBalance) map[string]money.Amount {
	m := make(map[string]money.Amount, len(balances))
	for _, b := range balances {
		m[b.MemberID] += b.Balance
	}
	return m
}

func signed(a money.Amount, cur money.Currency) string {
	if a > 0 {
		return "+" + a.Format(cur)
	}
	return "-" + (-a).Format(cur)
}

// currencyOf resolves code, falling back to two decimals for unknown codes.
func currencyOf(code string) money.Currency {
	cur, err := money.LookupCurrency(code)
	if err != nil {
		return money.Currency{Code: code, Exponent: 2}
	}
	return cur
}

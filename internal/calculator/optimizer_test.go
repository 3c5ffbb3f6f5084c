package calculator

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func balancesOf(pairs ...any) []models.GroupBalance {
	var out []models.GroupBalance
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, models.GroupBalance{
			MemberID: pairs[i].(string),
			Balance:  money.Amount(pairs[i+1].(int)),
		})
	}
	return out
}

func assertSettlesEverything(t *testing.T, balances []models.GroupBalance, payments []models.SuggestedPayment, tol money.Amount) {
	t.Helper()
	for _, b := range ApplyPayments(balances, payments) {
		if b.Balance.Abs() > tol {
			t.Errorf("%s left with %d after payments %v", b.MemberID, b.Balance, payments)
		}
	}
}

func TestOptimizeSettlements_FourMembers(t *testing.T) {
	members := []models.Member{alice, bob, carol, dave}
	balances := balancesOf("A", 30000, "B", 10000, "C", -25000, "D", -15000)

	payments, err := OptimizeSettlements(balances, members)
	if err != nil {
		t.Fatalf("OptimizeSettlements failed: %v", err)
	}

	if len(payments) < 2 || len(payments) > 3 {
		t.Fatalf("got %d payments, want 2 or 3: %v", len(payments), payments)
	}

	want := []models.SuggestedPayment{
		{FromMemberID: "C", ToMemberID: "A", Amount: 25000},
		{FromMemberID: "D", ToMemberID: "B", Amount: 10000},
		{FromMemberID: "D", ToMemberID: "A", Amount: 5000},
	}
	for i, p := range payments {
		if p != want[i] {
			t.Errorf("payment %d = %+v, want %+v", i, p, want[i])
		}
		if p.Amount%100 != 0 {
			t.Errorf("payment %d is not a whole rupee amount: %d", i, p.Amount)
		}
	}

	received := map[string]money.Amount{}
	for _, p := range payments {
		received[p.ToMemberID] += p.Amount
	}
	if received["A"] != 30000 || received["B"] != 10000 {
		t.Errorf("received = %v, want A:30000 B:10000", received)
	}
	assertSettlesEverything(t, balances, payments, 0)
}

func TestOptimizeSettlements(t *testing.T) {
	members := []models.Member{alice, bob, carol, dave}

	tests := []struct {
		name     string
		balances []models.GroupBalance
		want     []models.SuggestedPayment
	}{
		{
			name:     "already settled",
			balances: balancesOf("A", 0, "B", 0),
			want:     nil,
		},
		{
			name:     "single minor unit is still paid",
			balances: balancesOf("A", 1, "B", -1),
			want: []models.SuggestedPayment{
				{FromMemberID: "B", ToMemberID: "A", Amount: 1},
			},
		},
		{
			name:     "one debtor pays two creditors, largest first",
			balances: balancesOf("A", 2000, "B", 5000, "C", -7000),
			want: []models.SuggestedPayment{
				{FromMemberID: "C", ToMemberID: "B", Amount: 5000},
				{FromMemberID: "C", ToMemberID: "A", Amount: 2000},
			},
		},
		{
			name:     "ties follow member order",
			balances: balancesOf("A", -1000, "B", -1000, "C", 1000, "D", 1000),
			want: []models.SuggestedPayment{
				{FromMemberID: "A", ToMemberID: "C", Amount: 1000},
				{FromMemberID: "B", ToMemberID: "D", Amount: 1000},
			},
		},
		{
			name:     "perfect pairs need one payment each",
			balances: balancesOf("A", 4000, "B", -4000, "C", 1500, "D", -1500),
			want: []models.SuggestedPayment{
				{FromMemberID: "B", ToMemberID: "A", Amount: 4000},
				{FromMemberID: "D", ToMemberID: "C", Amount: 1500},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments, err := OptimizeSettlements(tt.balances, members)
			if err != nil {
				t.Fatalf("OptimizeSettlements failed: %v", err)
			}
			if len(payments) != len(tt.want) {
				t.Fatalf("got %d payments %v, want %d", len(payments), payments, len(tt.want))
			}
			for i := range payments {
				if payments[i] != tt.want[i] {
					t.Errorf("payment %d = %+v, want %+v", i, payments[i], tt.want[i])
				}
			}
		})
	}
}

func TestOptimizeSettlements_DustAddsUp(t *testing.T) {
	members := []models.Member{alice, bob, carol, dave}

	// Three debts of one unit each, together more than the default tolerance.
	balances := balancesOf("A", 3, "B", -1, "C", -1, "D", -1)
	payments, err := OptimizeSettlements(balances, members)
	if err != nil {
		t.Fatalf("OptimizeSettlements failed: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("got %d payments %v, want 3", len(payments), payments)
	}
	assertSettlesEverything(t, balances, payments, 0)

	// The same balances coming out of a real ledger.
	expenses := []models.Expense{{
		ID:     "e1",
		Amount: 3,
		PaidBy: "A",
		Splits: []models.Split{{MemberID: "B", Amount: 1}, {MemberID: "C", Amount: 1}, {MemberID: "D", Amount: 1}},
	}}
	fromLedger, err := CalculateGroupBalances(expenses, nil, members)
	if err != nil {
		t.Fatalf("CalculateGroupBalances failed: %v", err)
	}
	payments, err = OptimizeSettlements(fromLedger, members)
	if err != nil {
		t.Fatalf("OptimizeSettlements failed: %v", err)
	}
	assertSettlesEverything(t, fromLedger, payments, 0)
}

func TestOptimizeSettlements_Errors(t *testing.T) {
	members := []models.Member{alice, bob, carol}

	t.Run("credit and debit do not cancel", func(t *testing.T) {
		_, err := OptimizeSettlements(balancesOf("A", 5000, "B", -3000), members)
		var inconsistent *LedgerInconsistencyError
		if !errors.As(err, &inconsistent) {
			t.Fatalf("expected LedgerInconsistencyError, got %v", err)
		}
		if inconsistent.Credit != 5000 || inconsistent.Debit != 3000 {
			t.Errorf("error = %+v, want credit 5000 debit 3000", inconsistent)
		}
	})

	t.Run("balance for a non-member", func(t *testing.T) {
		_, err := OptimizeSettlements(balancesOf("A", 100, "Z", -100), members)
		var missing *MissingMemberError
		if !errors.As(err, &missing) {
			t.Errorf("expected MissingMemberError, got %v", err)
		}
	})

	t.Run("member listed twice", func(t *testing.T) {
		_, err := OptimizeSettlements(balancesOf("A", 100, "A", -100), members)
		if !errors.Is(err, ErrDuplicateMember) {
			t.Errorf("expected ErrDuplicateMember, got %v", err)
		}
	})
}

func TestOptimizeSettlements_ClearsLedgers(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	members := []models.Member{alice, bob, carol, dave}

	for range 500 {
		expenses, settlements := randomLedger(t, rng, members)
		balances, err := CalculateGroupBalances(expenses, settlements, members)
		if err != nil {
			t.Fatalf("CalculateGroupBalances failed: %v", err)
		}

		payments, err := OptimizeSettlements(balances, members)
		if err != nil {
			t.Fatalf("OptimizeSettlements failed: %v", err)
		}

		nonZero := 0
		for _, b := range balances {
			if b.Balance != 0 {
				nonZero++
			}
		}
		if nonZero > 0 && len(payments) > nonZero-1 {
			t.Fatalf("%d payments for %d non-zero members", len(payments), nonZero)
		}
		for i := 1; i < len(payments); i++ {
			if payments[i].Amount > payments[i-1].Amount {
				t.Fatalf("payments not sorted by amount: %v", payments)
			}
		}

		// Executing the suggestions as completed settlements zeroes the ledger.
		for i, p := range payments {
			settlements = append(settlements, models.Settlement{
				ID:           "p" + string(rune('a'+i)),
				FromMemberID: p.FromMemberID,
				ToMemberID:   p.ToMemberID,
				Amount:       p.Amount,
				Status:       models.SettlementCompleted,
			})
		}
		after, err := CalculateGroupBalances(expenses, settlements, members)
		if err != nil {
			t.Fatalf("CalculateGroupBalances after payments failed: %v", err)
		}
		for _, b := range after {
			if b.Balance != 0 {
				t.Fatalf("%s has %d left after executing %v", b.MemberID, b.Balance, payments)
			}
		}
	}
}

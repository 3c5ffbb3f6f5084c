package calculator

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var (
	alice = models.Member{ID: "A", Name: "Alice"}
	bob   = models.Member{ID: "B", Name: "Bob"}
	carol = models.Member{ID: "C", Name: "Carol"}
	dave  = models.Member{ID: "D", Name: "Dave"}
)

func expense(id, paidBy string, amount money.Amount, splits ...models.Split) models.Expense {
	return models.Expense{ID: id, PaidBy: paidBy, Amount: amount, Currency: "INR", Splits: splits}
}

func split(id string, amount money.Amount) models.Split {
	return models.Split{MemberID: id, Amount: amount}
}

func settlement(id, from, to string, amount money.Amount, status models.SettlementStatus) models.Settlement {
	return models.Settlement{ID: id, FromMemberID: from, ToMemberID: to, Amount: amount, Currency: "INR", Status: status}
}

func balanceOf(t *testing.T, balances []models.GroupBalance, id string) money.Amount {
	t.Helper()
	for _, b := range balances {
		if b.MemberID == id {
			return b.Balance
		}
	}
	t.Fatalf("no balance for %s", id)
	return 0
}

func TestCalculateGroupBalances_TwoExpensesOneSettlement(t *testing.T) {
	members := []models.Member{alice, bob}
	expenses := []models.Expense{
		expense("e1", "A", 100000, split("A", 50000), split("B", 50000)),
		expense("e2", "B", 20000, split("A", 10000), split("B", 10000)),
	}
	settlements := []models.Settlement{
		settlement("s1", "B", "A", 20000, models.SettlementCompleted),
	}

	balances, err := CalculateGroupBalances(expenses, settlements, members)
	if err != nil {
		t.Fatalf("CalculateGroupBalances failed: %v", err)
	}

	// A paid 1000 and owes 600: +400. B paid 200 and owes 600: -400.
	// B then pays A 200, which halves the debt.
	if got := balanceOf(t, balances, "A"); got != 20000 {
		t.Errorf("A balance = %d, want 20000", got)
	}
	if got := balanceOf(t, balances, "B"); got != -20000 {
		t.Errorf("B balance = %d, want -20000", got)
	}
	if sum := SumBalances(balances); sum != 0 {
		t.Errorf("balances sum to %d, want 0", sum)
	}
}

func TestCalculateGroupBalances(t *testing.T) {
	tests := []struct {
		name        string
		members     []models.Member
		expenses    []models.Expense
		settlements []models.Settlement
		want        map[string]money.Amount
	}{
		{
			name:    "no history",
			members: []models.Member{alice, bob},
			want:    map[string]money.Amount{"A": 0, "B": 0},
		},
		{
			name:    "equal split with remainder",
			members: []models.Member{alice, bob, carol},
			expenses: []models.Expense{
				expense("e1", "A", 10000, split("A", 3334), split("B", 3333), split("C", 3333)),
			},
			want: map[string]money.Amount{"A": 6666, "B": -3333, "C": -3333},
		},
		{
			name:    "pending settlements are ignored",
			members: []models.Member{alice, bob},
			expenses: []models.Expense{
				expense("e1", "A", 5000, split("B", 5000)),
			},
			settlements: []models.Settlement{
				settlement("s1", "B", "A", 5000, models.SettlementPending),
			},
			want: map[string]money.Amount{"A": 5000, "B": -5000},
		},
		{
			name:    "completed settlement clears the debt",
			members: []models.Member{alice, bob},
			expenses: []models.Expense{
				expense("e1", "A", 5000, split("B", 5000)),
			},
			settlements: []models.Settlement{
				settlement("s1", "B", "A", 5000, models.SettlementCompleted),
			},
			want: map[string]money.Amount{"A": 0, "B": 0},
		},
		{
			name:    "zero split member is still listed",
			members: []models.Member{alice, bob, carol},
			expenses: []models.Expense{
				expense("e1", "B", 3000, split("A", 1500), split("B", 1500), split("C", 0)),
			},
			want: map[string]money.Amount{"A": -1500, "B": 1500, "C": 0},
		},
		{
			name:    "payer outside the splits",
			members: []models.Member{alice, bob, carol},
			expenses: []models.Expense{
				expense("e1", "C", 9000, split("A", 4500), split("B", 4500)),
			},
			want: map[string]money.Amount{"A": -4500, "B": -4500, "C": 9000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, err := CalculateGroupBalances(tt.expenses, tt.settlements, tt.members)
			if err != nil {
				t.Fatalf("CalculateGroupBalances failed: %v", err)
			}
			if len(balances) != len(tt.members) {
				t.Fatalf("got %d balances, want %d", len(balances), len(tt.members))
			}
			for i, b := range balances {
				if b.MemberID != tt.members[i].ID {
					t.Errorf("balance %d is for %s, want member order %s", i, b.MemberID, tt.members[i].ID)
				}
				if b.Balance != tt.want[b.MemberID] {
					t.Errorf("%s balance = %d, want %d", b.MemberID, b.Balance, tt.want[b.MemberID])
				}
			}
		})
	}
}

func TestCalculateGroupBalances_Errors(t *testing.T) {
	members := []models.Member{alice, bob}

	t.Run("split for a non-member", func(t *testing.T) {
		_, err := CalculateGroupBalances([]models.Expense{
			expense("e1", "A", 1000, split("A", 500), split("Z", 500)),
		}, nil, members)
		var missing *MissingMemberError
		if !errors.As(err, &missing) || missing.MemberID != "Z" {
			t.Errorf("expected MissingMemberError for Z, got %v", err)
		}
	})

	t.Run("settlement to a non-member", func(t *testing.T) {
		_, err := CalculateGroupBalances(nil, []models.Settlement{
			settlement("s1", "A", "Z", 100, models.SettlementCompleted),
		}, members)
		var missing *MissingMemberError
		if !errors.As(err, &missing) {
			t.Errorf("expected MissingMemberError, got %v", err)
		}
	})

	t.Run("splits do not add up", func(t *testing.T) {
		_, err := CalculateGroupBalances([]models.Expense{
			expense("e1", "A", 10000, split("A", 6000), split("B", 3000)),
		}, nil, members)
		var mismatch *SplitMismatchError
		if !errors.As(err, &mismatch) {
			t.Errorf("expected SplitMismatchError, got %v", err)
		}
	})

	t.Run("self settlement", func(t *testing.T) {
		_, err := CalculateGroupBalances(nil, []models.Settlement{
			settlement("s1", "A", "A", 100, models.SettlementCompleted),
		}, members)
		if !errors.Is(err, ErrSelfSettlement) {
			t.Errorf("expected ErrSelfSettlement, got %v", err)
		}
	})

	t.Run("duplicate members", func(t *testing.T) {
		_, err := CalculateGroupBalances(nil, nil, []models.Member{alice, alice})
		if !errors.Is(err, ErrDuplicateMember) {
			t.Errorf("expected ErrDuplicateMember, got %v", err)
		}
	})
}

// randomLedger builds a consistent ledger over members using the normalizers.
func randomLedger(t *testing.T, rng *rand.Rand, members []models.Member) ([]models.Expense, []models.Settlement) {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	var expenses []models.Expense
	for i := range rng.IntN(20) + 1 {
		total := money.Amount(rng.Int64N(500_000) + 1)
		participants := ids[:rng.IntN(len(ids))+1]
		splits, err := NormalizeEqualSplit(total, participants)
		if err != nil {
			t.Fatalf("NormalizeEqualSplit failed: %v", err)
		}
		expenses = append(expenses, models.Expense{
			ID:     "e" + string(rune('a'+i)),
			PaidBy: ids[rng.IntN(len(ids))],
			Amount: total,
			Splits: splits,
		})
	}

	var settlements []models.Settlement
	for i := range rng.IntN(5) {
		from := rng.IntN(len(ids))
		to := (from + 1 + rng.IntN(len(ids)-1)) % len(ids)
		status := models.SettlementCompleted
		if rng.IntN(3) == 0 {
			status = models.SettlementPending
		}
		settlements = append(settlements, models.Settlement{
			ID:           "s" + string(rune('a'+i)),
			FromMemberID: ids[from],
			ToMemberID:   ids[to],
			Amount:       money.Amount(rng.Int64N(100_000) + 1),
			Status:       status,
		})
	}
	return expenses, settlements
}

func TestCalculateGroupBalances_ConservationAndIdempotence(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	members := []models.Member{alice, bob, carol, dave}

	for range 500 {
		expenses, settlements := randomLedger(t, rng, members)

		first, err := CalculateGroupBalances(expenses, settlements, members)
		if err != nil {
			t.Fatalf("CalculateGroupBalances failed: %v", err)
		}
		if sum := SumBalances(first); sum.Abs() > DefaultTolerance.Minor {
			t.Fatalf("balances sum to %d, want 0", sum)
		}

		second, err := CalculateGroupBalances(expenses, settlements, members)
		if err != nil {
			t.Fatalf("second CalculateGroupBalances failed: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("recomputation differs: %v vs %v", first, second)
		}

		// Order of the ledger does not matter.
		reversed := make([]models.Expense, len(expenses))
		for i, e := range expenses {
			reversed[len(expenses)-1-i] = e
		}
		third, err := CalculateGroupBalances(reversed, settlements, members)
		if err != nil {
			t.Fatalf("reversed CalculateGroupBalances failed: %v", err)
		}
		if !reflect.DeepEqual(first, third) {
			t.Fatalf("expense order changed the result: %v vs %v", first, third)
		}
	}
}

func TestValidateExpenseAndSettlement(t *testing.T) {
	members := []models.Member{alice, bob}

	e := expense("e1", "Z", 100, split("A", 100))
	var missing *MissingMemberError
	if err := DefaultTolerance.ValidateExpense(&e, members); !errors.As(err, &missing) || missing.Context != "payer" {
		t.Errorf("expected payer MissingMemberError, got %v", err)
	}

	e = expense("e2", "A", 0, split("A", 0))
	if err := DefaultTolerance.ValidateExpense(&e, members); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("expected ErrNonPositiveAmount, got %v", err)
	}

	e = expense("e3", "A", 100)
	if err := DefaultTolerance.ValidateExpense(&e, members); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("expected ErrNoParticipants, got %v", err)
	}

	s := settlement("s1", "A", "B", 100, "refunded")
	if err := ValidateSettlement(&s, members); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}

	s = settlement("s2", "A", "B", 100, models.SettlementPending)
	if err := ValidateSettlement(&s, members); err != nil {
		t.Errorf("valid settlement rejected: %v", err)
	}
}

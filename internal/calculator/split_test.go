package calculator

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func splitMap(splits []models.Split) map[string]money.Amount {
	m := make(map[string]money.Amount, len(splits))
	for _, s := range splits {
		m[s.MemberID] = s.Amount
	}
	return m
}

func weights(pairs ...any) []Weight {
	var ws []Weight
	for i := 0; i < len(pairs); i += 2 {
		ws = append(ws, Weight{
			MemberID: pairs[i].(string),
			Value:    decimal.RequireFromString(pairs[i+1].(string)),
		})
	}
	return ws
}

func TestNormalizeEqualSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   money.Amount
		members []string
		want    []money.Amount
		wantErr error
	}{
		{
			name:    "100 over three assigns remainder in input order",
			total:   10000,
			members: []string{"A", "B", "C"},
			want:    []money.Amount{3334, 3333, 3333},
		},
		{
			name:    "evenly divisible",
			total:   9000,
			members: []string{"A", "B", "C"},
			want:    []money.Amount{3000, 3000, 3000},
		},
		{
			name:    "remainder of two",
			total:   10001,
			members: []string{"A", "B", "C"},
			want:    []money.Amount{3334, 3334, 3333},
		},
		{
			name:    "single member takes everything",
			total:   12345,
			members: []string{"A"},
			want:    []money.Amount{12345},
		},
		{
			name:    "fewer units than members",
			total:   2,
			members: []string{"A", "B", "C"},
			want:    []money.Amount{1, 1, 0},
		},
		{
			name:    "no members",
			total:   100,
			wantErr: ErrNoParticipants,
		},
		{
			name:    "zero total",
			total:   0,
			members: []string{"A"},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "duplicate member",
			total:   100,
			members: []string{"A", "A"},
			wantErr: ErrDuplicateMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := NormalizeEqualSplit(tt.total, tt.members)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NormalizeEqualSplit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeEqualSplit() unexpected error: %v", err)
			}
			if len(splits) != len(tt.want) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.want))
			}
			for i, s := range splits {
				if s.MemberID != tt.members[i] {
					t.Errorf("split %d member = %s, want %s", i, s.MemberID, tt.members[i])
				}
				if s.Amount != tt.want[i] {
					t.Errorf("split %d (%s) = %d, want %d", i, s.MemberID, s.Amount, tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeEqualSplit_SumIsExact(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}

	for range 2000 {
		total := money.Amount(rng.Int64N(10_000_000) + 1)
		members := ids[:rng.IntN(len(ids))+1]

		splits, err := NormalizeEqualSplit(total, members)
		if err != nil {
			t.Fatalf("NormalizeEqualSplit(%d, %d members) failed: %v", total, len(members), err)
		}
		if got := sumSplits(splits); got != total {
			t.Fatalf("sum = %d, want %d (members %d)", got, total, len(members))
		}
		for _, s := range splits {
			if diff := (s.Amount - splits[0].Amount).Abs(); diff > 1 {
				t.Fatalf("equal split differs by %d minor units", diff)
			}
		}
	}
}

func TestNormalizeWeightedSplit_Percentage(t *testing.T) {
	tests := []struct {
		name    string
		total   money.Amount
		weights []Weight
		want    map[string]money.Amount
	}{
		{
			name:    "clean percentages",
			total:   10000,
			weights: weights("A", "50", "B", "30", "C", "20"),
			want:    map[string]money.Amount{"A": 5000, "B": 3000, "C": 2000},
		},
		{
			name:    "thirds",
			total:   10000,
			weights: weights("A", "33.33", "B", "33.33", "C", "33.34"),
			want:    map[string]money.Amount{"A": 3333, "B": 3333, "C": 3334},
		},
		{
			name:    "inside tolerance still sums exactly",
			total:   999,
			weights: weights("A", "33.3", "B", "33.3", "C", "33.3"),
			want:    map[string]money.Amount{"A": 333, "B": 333, "C": 333},
		},
		{
			name:    "zero percent member gets nothing",
			total:   101,
			weights: weights("A", "50", "B", "50", "C", "0"),
			want:    map[string]money.Amount{"A": 51, "B": 50, "C": 0},
		},
		{
			name:    "remainder goes to the first weighted members",
			total:   100,
			weights: weights("A", "0", "B", "33.34", "C", "33.33", "D", "33.33"),
			want:    map[string]money.Amount{"A": 0, "B": 34, "C": 33, "D": 33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := NormalizeWeightedSplit(tt.total, SplitPercentage, tt.weights)
			if err != nil {
				t.Fatalf("NormalizeWeightedSplit() unexpected error: %v", err)
			}
			if got := sumSplits(splits); got != tt.total {
				t.Errorf("sum = %d, want %d", got, tt.total)
			}
			got := splitMap(splits)
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("%s = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestNormalizeWeightedSplit_Shares(t *testing.T) {
	splits, err := NormalizeWeightedSplit(10000, SplitShares, weights("A", "2", "B", "1", "C", "1"))
	if err != nil {
		t.Fatalf("NormalizeWeightedSplit() unexpected error: %v", err)
	}
	got := splitMap(splits)
	want := map[string]money.Amount{"A": 5000, "B": 2500, "C": 2500}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("%s = %d, want %d", id, got[id], w)
		}
	}

	// 100.00 over 1:1:1 shares behaves like the equal split.
	splits, err = NormalizeWeightedSplit(10000, SplitShares, weights("A", "1", "B", "1", "C", "1"))
	if err != nil {
		t.Fatalf("NormalizeWeightedSplit() unexpected error: %v", err)
	}
	if got := splitMap(splits); got["A"] != 3334 || got["B"] != 3333 || got["C"] != 3333 {
		t.Errorf("1:1:1 shares = %v, want 3334/3333/3333", got)
	}
}

func TestNormalizeWeightedSplit_SumIsExact(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}

	for range 2000 {
		total := money.Amount(rng.Int64N(5_000_000) + 1)
		n := rng.IntN(len(ids)) + 1

		var ws []Weight
		for i := 0; i < n; i++ {
			ws = append(ws, Weight{MemberID: ids[i], Value: decimal.NewFromInt(rng.Int64N(10) + 1)})
		}
		splits, err := NormalizeWeightedSplit(total, SplitShares, ws)
		if err != nil {
			t.Fatalf("shares split failed: %v", err)
		}
		if got := sumSplits(splits); got != total {
			t.Fatalf("shares sum = %d, want %d", got, total)
		}

		// Percentages: integer parts that add up to exactly 100.
		remaining := int64(100)
		ws = ws[:0]
		for i := 0; i < n; i++ {
			p := remaining
			if i < n-1 {
				p = rng.Int64N(remaining + 1)
			}
			remaining -= p
			ws = append(ws, Weight{MemberID: ids[i], Value: decimal.NewFromInt(p)})
		}
		splits, err = NormalizeWeightedSplit(total, SplitPercentage, ws)
		if err != nil {
			t.Fatalf("percentage split failed: %v", err)
		}
		if got := sumSplits(splits); got != total {
			t.Fatalf("percentage sum = %d, want %d", got, total)
		}
		for _, s := range splits {
			if s.Amount < 0 {
				t.Fatalf("negative split %d for %s", s.Amount, s.MemberID)
			}
		}
	}
}

func TestNormalizeWeightedSplit_InvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		mode    SplitMode
		weights []Weight
	}{
		{"percentages under 100", SplitPercentage, weights("A", "50", "B", "49.8")},
		{"percentages over 100", SplitPercentage, weights("A", "60", "B", "40.2")},
		{"negative percentage", SplitPercentage, weights("A", "110", "B", "-10")},
		{"all shares zero", SplitShares, weights("A", "0", "B", "0")},
		{"fractional share", SplitShares, weights("A", "1.5", "B", "1")},
		{"equal mode takes no weights", SplitEqual, weights("A", "1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeWeightedSplit(10000, tt.mode, tt.weights)
			var weightErr *InvalidWeightError
			if !errors.As(err, &weightErr) {
				t.Fatalf("expected InvalidWeightError, got %v", err)
			}
		})
	}

	// 99.95 is inside the default 0.1 tolerance.
	if _, err := NormalizeWeightedSplit(10000, SplitPercentage, weights("A", "50", "B", "49.95")); err != nil {
		t.Errorf("99.95%% should be accepted, got %v", err)
	}

	strict := Tolerance{Minor: 0, Percent: decimal.Zero}
	if _, err := strict.NormalizeWeightedSplit(10000, SplitPercentage, weights("A", "50", "B", "49.95")); err == nil {
		t.Error("99.95%% should be rejected with a zero tolerance")
	}
}

func TestNormalizeCustomSplit(t *testing.T) {
	t.Run("mismatch is an error, not a correction", func(t *testing.T) {
		_, err := NormalizeCustomSplit([]models.Split{
			{MemberID: "A", Amount: 6000},
			{MemberID: "B", Amount: 3000},
		}, 10000)

		var mismatch *SplitMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected SplitMismatchError, got %v", err)
		}
		if mismatch.Total != 10000 || mismatch.Sum != 9000 {
			t.Errorf("mismatch = %+v, want total 10000 sum 9000", mismatch)
		}
	})

	t.Run("exact amounts pass through", func(t *testing.T) {
		in := []models.Split{{MemberID: "A", Amount: 7000}, {MemberID: "B", Amount: 3000}}
		splits, err := NormalizeCustomSplit(in, 10000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := splitMap(splits); got["A"] != 7000 || got["B"] != 3000 {
			t.Errorf("splits = %v", got)
		}
		splits[0].Amount = 1
		if in[0].Amount != 7000 {
			t.Error("NormalizeCustomSplit must not alias its input")
		}
	})

	t.Run("one unit off is absorbed exactly", func(t *testing.T) {
		splits, err := NormalizeCustomSplit([]models.Split{
			{MemberID: "A", Amount: 0},
			{MemberID: "B", Amount: 3333},
			{MemberID: "C", Amount: 6666},
		}, 10000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := splitMap(splits)
		if got["A"] != 0 || got["B"] != 3334 || got["C"] != 6666 {
			t.Errorf("splits = %v, want A:0 B:3334 C:6666", got)
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := NormalizeCustomSplit([]models.Split{{MemberID: "A", Amount: -1}, {MemberID: "B", Amount: 10001}}, 10000)
		if !errors.Is(err, ErrNegativeAmount) {
			t.Errorf("expected ErrNegativeAmount, got %v", err)
		}
	})
}

func TestAdjustCustomSplit(t *testing.T) {
	splits, err := AdjustCustomSplit([]models.Split{
		{MemberID: "A", Amount: 6000},
		{MemberID: "B", Amount: 3000},
	}, 10000)
	if err != nil {
		t.Fatalf("AdjustCustomSplit failed: %v", err)
	}
	got := splitMap(splits)
	// 60:30 scaled to 100.00 is 66.67 / 33.33.
	if got["A"] != 6667 || got["B"] != 3333 {
		t.Errorf("adjusted = %v, want A:6667 B:3333", got)
	}
	if sumSplits(splits) != 10000 {
		t.Errorf("adjusted sum = %d, want 10000", sumSplits(splits))
	}

	_, err = AdjustCustomSplit([]models.Split{{MemberID: "A", Amount: 0}}, 10000)
	var weightErr *InvalidWeightError
	if !errors.As(err, &weightErr) {
		t.Errorf("expected InvalidWeightError for all-zero amounts, got %v", err)
	}
}

func TestVerifySplitsSum(t *testing.T) {
	splits := []models.Split{{MemberID: "A", Amount: 3334}, {MemberID: "B", Amount: 3333}, {MemberID: "C", Amount: 3333}}
	if !VerifySplitsSum(splits, 10000) {
		t.Error("exact splits should verify")
	}
	if !VerifySplitsSum(splits, 10001) {
		t.Error("one minor unit off should verify within default tolerance")
	}
	if VerifySplitsSum(splits, 10002) {
		t.Error("two minor units off should not verify")
	}
	if (Tolerance{Minor: 0}).VerifySplitsSum(splits, 10001) {
		t.Error("zero tolerance should require exact sums")
	}
}

func TestParseSplitMode(t *testing.T) {
	for _, s := range []string{"equal", "percentage", "shares", "custom"} {
		if _, err := ParseSplitMode(s); err != nil {
			t.Errorf("ParseSplitMode(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseSplitMode("itemized"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

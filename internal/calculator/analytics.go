package calculator

import (
	"math"
	"sort"
	"time"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// UncategorizedLabel groups expenses recorded without a category.
const UncategorizedLabel = "Other"

type monthKey struct {
	year  int
	month time.Month
}

func expenseMonth(e models.Expense, loc *time.Location) monthKey {
	t := time.Unix(e.CreatedAt, 0).In(loc)
	return monthKey{t.Year(), t.Month()}
}

// MonthlyTotals sums spending over the last months calendar months, ending
// with the month of now and read in now's location. Every month is listed,
// oldest first, including months without expenses.
func MonthlyTotals(expenses []models.Expense, now time.Time, months int) []models.MonthlyTotal {
	if months <= 0 {
		return nil
	}
	byMonth := make(map[monthKey]*models.MonthlyTotal, months)
	out := make([]models.MonthlyTotal, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := range months {
		m := first.AddDate(0, i-months+1, 0)
		out[i] = models.MonthlyTotal{Year: m.Year(), Month: m.Month()}
		byMonth[monthKey{m.Year(), m.Month()}] = &out[i]
	}
	for _, e := range expenses {
		if t, ok := byMonth[expenseMonth(e, now.Location())]; ok {
			t.Amount += e.Amount
			t.Count++
		}
	}
	return out
}

// CategoryBreakdown sums spending per category, largest first. A zero from
// or to leaves that end of the range open; to is exclusive.
func CategoryBreakdown(expenses []models.Expense, from, to time.Time) []models.CategoryTotal {
	byCategory := make(map[string]*models.CategoryTotal)
	var out []*models.CategoryTotal
	for _, e := range expenses {
		at := time.Unix(e.CreatedAt, 0)
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && !at.Before(to) {
			continue
		}
		name := e.Category
		if name == "" {
			name = UncategorizedLabel
		}
		c, ok := byCategory[name]
		if !ok {
			c = &models.CategoryTotal{Category: name}
			byCategory[name] = c
			out = append(out, c)
		}
		c.Amount += e.Amount
		c.Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	totals := make([]models.CategoryTotal, len(out))
	for i, c := range out {
		totals[i] = *c
	}
	return totals
}

// SpendingTrend describes how spending moves across the months that had
// any. With a memberID only expenses that member paid are counted.
//
// The trend compares the last two active months with the two before them.
// Fewer than three active months, or a coefficient of variation above 0.5,
// is a sporadic pattern; otherwise a trend beyond 20% either way is
// increasing or decreasing.
func SpendingTrend(expenses []models.Expense, memberID string, loc *time.Location) models.SpendingTrend {
	if loc == nil {
		loc = time.UTC
	}
	byMonth := make(map[monthKey]*models.MonthlyTotal)
	var months []*models.MonthlyTotal
	var count int
	for _, e := range expenses {
		if memberID != "" && e.PaidBy != memberID {
			continue
		}
		count++
		k := expenseMonth(e, loc)
		t, ok := byMonth[k]
		if !ok {
			t = &models.MonthlyTotal{Year: k.year, Month: k.month}
			byMonth[k] = t
			months = append(months, t)
		}
		t.Amount += e.Amount
		t.Count++
	}

	trend := models.SpendingTrend{Pattern: "consistent", TotalExpenses: count}
	if len(months) == 0 {
		return trend
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	var sum money.Amount
	for _, m := range months {
		sum += m.Amount
		trend.Months = append(trend.Months, *m)
	}
	avg := float64(sum) / float64(len(months))
	trend.AveragePerMonth = money.Amount(math.Round(avg))

	if n := len(months); n >= 4 {
		recent := months[n-1].Amount + months[n-2].Amount
		previous := months[n-3].Amount + months[n-4].Amount
		if previous > 0 {
			pct := float64(recent-previous) / float64(previous) * 100
			trend.TrendPercent = math.Round(pct*100) / 100
		}
	}

	if len(months) < 3 {
		trend.Pattern = "sporadic"
		return trend
	}
	var variance float64
	for _, m := range months {
		d := float64(m.Amount) - avg
		variance += d * d
	}
	variance /= float64(len(months))
	var coefficient float64
	if avg > 0 {
		coefficient = math.Sqrt(variance) / avg
	}
	switch {
	case coefficient > 0.5:
		trend.Pattern = "sporadic"
	case trend.TrendPercent > 20:
		trend.Pattern = "increasing"
	case trend.TrendPercent < -20:
		trend.Pattern = "decreasing"
	}
	return trend
}

package cli

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// insightsCmd prints fairness, data quality and spending summaries.
type insightsCmd struct {
	months   int
	memberID string
	now      time.Time
}

func (*insightsCmd) Name() string     { return "insights" }
func (*insightsCmd) Synopsis() string { return "grade fairness and data quality, summarize spending" }
func (*insightsCmd) Usage() string {
	return `ledgerctl [-f <ledger>] insights [-months 6] [-m <member id>]

  Monthly totals cover the last -months calendar months in UTC. -m limits
  the spending trend to what that member paid.
`
}

func (c *insightsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "months", 6, "Number of calendar months to total")
	f.StringVar(&c.memberID, "m", "", "Member ID for the spending trend")
}

func (c *insightsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.months <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -months must be positive")
		return subcommands.ExitUsageError
	}
	return run(c.run)
}

func (c *insightsCmd) run(w io.Writer, l *ledger) error {
	now := c.now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if c.memberID != "" && !hasMember(l.members, c.memberID) {
		return fmt.Errorf("no member %q in the ledger", c.memberID)
	}

	balances, err := calculator.CalculateGroupBalances(l.expenses, l.settlements, l.members)
	if err != nil {
		return err
	}

	fairness := calculator.FairnessScore(l.expenses, l.members, balances)
	fmt.Fprintf(w, "Fairness: %d/100 (%s)\n", fairness.Score, fairness.Level)
	fmt.Fprintf(w, "  payments %d, splits %d, balances %d\n",
		fairness.PaymentDistribution, fairness.SplitEquality, fairness.BalanceDistribution)
	for _, issue := range fairness.Issues {
		fmt.Fprintf(w, "  ! %s\n", issue)
	}
	for _, rec := range fairness.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}

	reliability := calculator.ReliabilityScore(l.expenses, l.settlements)
	fmt.Fprintf(w, "Reliability: %d/100 (%s)\n", reliability.Score, reliability.Level)
	for _, warning := range reliability.Warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}

	fmt.Fprintln(w, "Monthly totals:")
	for _, m := range calculator.MonthlyTotals(l.expenses, now, c.months) {
		fmt.Fprintf(w, "  %d-%02d %12s (%d)\n", m.Year, m.Month, m.Amount.Format(l.currency), m.Count)
	}

	fmt.Fprintln(w, "Categories:")
	for _, cat := range calculator.CategoryBreakdown(l.expenses, time.Time{}, time.Time{}) {
		fmt.Fprintf(w, "  %-12s %12s (%d)\n", cat.Category, cat.Amount.Format(l.currency), cat.Count)
	}

	trend := calculator.SpendingTrend(l.expenses, c.memberID, now.Location())
	fmt.Fprintf(w, "Trend: %s, %s per month, %+.2f%%\n",
		trend.Pattern, trend.AveragePerMonth.Format(l.currency), trend.TrendPercent)
	return nil
}

func hasMember(members []models.Member, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// exportCmd writes the ledger as CSV files.
type exportCmd struct {
	dir string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write expenses, settlements and balances as CSV" }
func (*exportCmd) Usage() string {
	return `ledgerctl [-f <ledger>] export [-o <dir>]

  Writes expenses.csv, settlements.csv and balances.csv into -o.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "o", ".", "Output directory")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(c.run)
}

func (c *exportCmd) run(w io.Writer, l *ledger) error {
	files := []struct {
		name  string
		write func(io.Writer, *ledger) error
	}{
		{"expenses.csv", writeExpensesCSV},
		{"settlements.csv", writeSettlementsCSV},
		{"balances.csv", writeBalancesCSV},
	}
	for _, file := range files {
		path := filepath.Join(c.dir, file.name)
		if err := writeFile(path, l, file.write); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s\n", path)
	}
	return nil
}

func writeFile(path string, l *ledger, write func(io.Writer, *ledger) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, l); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func writeExpensesCSV(w io.Writer, l *ledger) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "paid_by", "amount", "date", "description", "category"})
	for _, e := range l.expenses {
		cw.Write([]string{e.ID, e.PaidBy, csvAmount(e.Amount, l.currency), csvDate(e.CreatedAt), e.Description, e.Category})
	}
	cw.Flush()
	return cw.Error()
}

func writeSettlementsCSV(w io.Writer, l *ledger) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "from_id", "to_id", "amount", "date", "status", "mode"})
	for _, s := range l.settlements {
		cw.Write([]string{s.ID, s.FromMemberID, s.ToMemberID, csvAmount(s.Amount, l.currency), csvDate(s.CreatedAt), string(s.Status), s.Mode})
	}
	cw.Flush()
	return cw.Error()
}

// writeBalancesCSV lists balances largest first.
func writeBalancesCSV(w io.Writer, l *ledger) error {
	balances, err := calculator.CalculateGroupBalances(l.expenses, l.settlements, l.members)
	if err != nil {
		return err
	}
	sort.SliceStable(balances, func(i, j int) bool { return balances[i].Balance > balances[j].Balance })

	cw := csv.NewWriter(w)
	cw.Write([]string{"member_id", "name", "balance"})
	for _, b := range balances {
		cw.Write([]string{b.MemberID, l.name(b.MemberID), csvAmount(b.Balance, l.currency)})
	}
	cw.Flush()
	return cw.Error()
}

func csvAmount(a money.Amount, cur money.Currency) string {
	return a.Decimal(cur).StringFixed(int32(cur.Exponent))
}

func csvDate(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(time.DateOnly)
}

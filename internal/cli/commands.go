package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// balancesCmd prints every member's net balance.
type balancesCmd struct{}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show each member's net balance" }
func (*balancesCmd) Usage() string {
	return `ledgerctl [-f <ledger>] balances

  Positive balances are owed to the member, negative balances are owed by them.
`
}
func (*balancesCmd) SetFlags(*flag.FlagSet) {}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(c.run)
}

func (c *balancesCmd) run(w io.Writer, l *ledger) error {
	balances, err := calculator.CalculateGroupBalances(l.expenses, l.settlements, l.members)
	if err != nil {
		return err
	}
	for _, b := range balances {
		fmt.Fprintf(w, "%-12s %12s\n", l.name(b.MemberID), signedAmount(b.Balance, l.currency))
	}
	return nil
}

// settleCmd prints the payments that would settle the ledger.
type settleCmd struct{}

func (*settleCmd) Name() string     { return "settle" }
func (*settleCmd) Synopsis() string { return "suggest payments that settle every balance" }
func (*settleCmd) Usage() string {
	return `ledgerctl [-f <ledger>] settle

  Lists who should pay whom, largest payment first.
`
}
func (*settleCmd) SetFlags(*flag.FlagSet) {}

func (c *settleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(c.run)
}

func (c *settleCmd) run(w io.Writer, l *ledger) error {
	balances, err := calculator.CalculateGroupBalances(l.expenses, l.settlements, l.members)
	if err != nil {
		return err
	}
	payments, err := calculator.OptimizeSettlements(balances, l.members)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		fmt.Fprintln(w, "All settled up.")
		return nil
	}
	for _, p := range payments {
		fmt.Fprintf(w, "%s -> %s: %s\n", l.name(p.FromMemberID), l.name(p.ToMemberID), p.Amount.Format(l.currency))
	}
	return nil
}

// splitCmd previews how an amount would be divided.
type splitCmd struct {
	amount       string
	mode         string
	participants string
	values       string
	adjust       bool
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "preview how an expense would be split" }
func (*splitCmd) Usage() string {
	return `ledgerctl [-f <ledger>] split -a <amount> [-m equal|percentage|shares|custom] [-p A,B] [-v A=50,B=50] [-adjust]

  equal uses -p (every member when empty); percentage and shares take
  weights in -v; custom takes amounts in -v.
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount to split, in major units")
	f.StringVar(&c.mode, "m", "equal", "Split mode: equal, percentage, shares or custom")
	f.StringVar(&c.participants, "p", "", "Comma separated member IDs for an equal split")
	f.StringVar(&c.values, "v", "", "Comma separated member=value pairs")
	f.BoolVar(&c.adjust, "adjust", false, "Scale custom amounts to the total instead of failing")
}

func (c *splitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -a is required")
		return subcommands.ExitUsageError
	}
	return run(c.run)
}

func (c *splitCmd) run(w io.Writer, l *ledger) error {
	d, err := decimal.NewFromString(c.amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", c.amount, err)
	}
	total, err := money.ParseExact(d, l.currency)
	if err != nil {
		return err
	}
	mode, err := calculator.ParseSplitMode(c.mode)
	if err != nil {
		return err
	}

	var splits []models.Split
	switch mode {
	case calculator.SplitEqual:
		ids := l.memberIDs()
		if c.participants != "" {
			ids = strings.Split(c.participants, ",")
		}
		splits, err = calculator.NormalizeEqualSplit(total, ids)
	case calculator.SplitPercentage, calculator.SplitShares:
		pairs, perr := parsePairs(c.values)
		if perr != nil {
			return perr
		}
		weights := make([]calculator.Weight, len(pairs))
		for i, p := range pairs {
			weights[i] = calculator.Weight{MemberID: p.id, Value: p.value}
		}
		splits, err = calculator.NormalizeWeightedSplit(total, mode, weights)
	case calculator.SplitCustom:
		pairs, perr := parsePairs(c.values)
		if perr != nil {
			return perr
		}
		amounts := make([]models.Split, len(pairs))
		for i, p := range pairs {
			a, aerr := money.ParseExact(p.value, l.currency)
			if aerr != nil {
				return aerr
			}
			amounts[i] = models.Split{MemberID: p.id, Amount: a}
		}
		splits, err = calculator.NormalizeCustomSplit(amounts, total)
		var mismatch *calculator.SplitMismatchError
		if errors.As(err, &mismatch) && c.adjust {
			splits, err = calculator.AdjustCustomSplit(amounts, total)
		}
	}
	if err != nil {
		return err
	}

	for _, sp := range splits {
		fmt.Fprintf(w, "%-12s %12s\n", l.name(sp.MemberID), sp.Amount.Format(l.currency))
	}
	return nil
}

type pair struct {
	id    string
	value decimal.Decimal
}

// parsePairs reads "A=50,B=30" in order.
func parsePairs(s string) ([]pair, error) {
	if s == "" {
		return nil, errors.New("-v is required for this mode")
	}
	var out []pair
	for _, item := range strings.Split(s, ",") {
		id, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			return nil, fmt.Errorf("expected member=value, got %q", item)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", id, err)
		}
		out = append(out, pair{id: id, value: d})
	}
	return out, nil
}

// auditCmd prints the ledger audit trail.
type auditCmd struct{}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "recompute balances step by step and check they cancel out" }
func (*auditCmd) Usage() string {
	return `ledgerctl [-f <ledger>] audit

  Exits with a failure status when the audit grade is error.
`
}
func (*auditCmd) SetFlags(*flag.FlagSet) {}

func (c *auditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(c.run)
}

func (c *auditCmd) run(w io.Writer, l *ledger) error {
	audit := calculator.ValidateLedger(l.currency.Code, l.expenses, l.settlements, l.members)
	for _, line := range audit.Lines {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Status: %s\n", audit.Status)
	if audit.Status == models.AuditError {
		return fmt.Errorf("balances do not cancel out (residual %s)", signedAmount(audit.Residual, l.currency))
	}
	return nil
}

// explainCmd describes how one settlement moved the balances.
type explainCmd struct {
	settlementID string
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "explain the effect of one settlement" }
func (*explainCmd) Usage() string {
	return `ledgerctl [-f <ledger>] explain -s <settlement id>
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.settlementID, "s", "", "Settlement ID")
}

func (c *explainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.settlementID == "" {
		fmt.Fprintln(os.Stderr, "Error: -s is required")
		return subcommands.ExitUsageError
	}
	return run(c.run)
}

func (c *explainCmd) run(w io.Writer, l *ledger) error {
	var (
		target *models.Settlement
		others []models.Settlement
	)
	for i, s := range l.settlements {
		if s.ID == c.settlementID {
			target = &l.settlements[i]
			continue
		}
		others = append(others, s)
	}
	if target == nil {
		return fmt.Errorf("no settlement %q in the ledger", c.settlementID)
	}

	before, err := calculator.CalculateGroupBalances(l.expenses, others, l.members)
	if err != nil {
		return err
	}
	after, err := calculator.CalculateGroupBalances(l.expenses, append(others, *target), l.members)
	if err != nil {
		return err
	}

	exp := calculator.ExplainSettlement(*target, before, after, l.members)
	fmt.Fprintln(w, exp.Summary)
	for _, d := range exp.Deltas {
		fmt.Fprintf(w, "  %s\n", d.Reason)
	}
	return nil
}

func signedAmount(a money.Amount, cur money.Currency) string {
	if a < 0 {
		return "-" + a.Abs().Format(cur)
	}
	return a.Format(cur)
}

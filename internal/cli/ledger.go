// Package cli implements ledgerctl, an offline view of a ledger kept in a
// JSON file. It runs the same calculator as the server without a database.
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// as a CLI application, it has a very short lived lifecycle, so global flags are fine.

var ledgerPath = flag.String("f", "ledger.json", "Path to the JSON ledger file")

// Commands are the ledgerctl subcommands, registered by main.
var Commands = []subcommands.Command{
	&balancesCmd{},
	&settleCmd{},
	&splitCmd{},
	&auditCmd{},
	&explainCmd{},
	&insightsCmd{},
	&exportCmd{},
}

// ledgerFile is the on-disk layout. Amounts are decimal major units.
//
//	{
//	  "currency": "INR",
//	  "members": [{"id": "A", "name": "Alice"}, {"id": "B", "name": "Bob"}],
//	  "expenses": [
//	    {"id": "e1", "paidBy": "A", "amount": "1000", "participants": ["A", "B"],
//	     "category": "stay", "date": "2026-03-14"},
//	    {"id": "e2", "paidBy": "B", "amount": "200",
//	     "splits": [{"memberId": "A", "amount": "100"}, {"memberId": "B", "amount": "100"}]}
//	  ],
//	  "settlements": [
//	    {"id": "s1", "fromMemberId": "B", "toMemberId": "A", "amount": "200", "status": "completed"}
//	  ]
//	}
//
// An expense without splits is divided equally over its participants, or
// over every member when it has none. Dates are RFC 3339,
// "2006-01-02 15:04:05" or "2006-01-02", read as UTC when they carry no zone.
// Settlements without a status count as completed.
type ledgerFile struct {
	Currency    string                 `json:"currency"`
	Members     []ledgerapi.Member     `json:"members"`
	Expenses    []fileExpense          `json:"expenses"`
	Settlements []ledgerapi.Settlement `json:"settlements"`
}

type fileExpense struct {
	ID           string            `json:"id"`
	PaidBy       string            `json:"paidBy"`
	Amount       decimal.Decimal   `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Category     string            `json:"category,omitempty"`
	Date         string            `json:"date,omitempty"`
	Participants []string          `json:"participants,omitempty"`
	Splits       []ledgerapi.Split `json:"splits,omitempty"`
}

// ledger is a decoded ledger file in minor units.
type ledger struct {
	currency    money.Currency
	members     []models.Member
	expenses    []models.Expense
	settlements []models.Settlement
}

func (l *ledger) memberIDs() []string {
	ids := make([]string, len(l.members))
	for i, m := range l.members {
		ids[i] = m.ID
	}
	return ids
}

func (l *ledger) name(id string) string {
	return models.MemberName(l.members, id)
}

func loadLedger(path string) (*ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := decodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

func decodeLedger(r io.Reader) (*ledger, error) {
	var file ledgerFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding ledger: %w", err)
	}

	code := file.Currency
	if code == "" {
		code = "INR"
	}
	cur, err := money.LookupCurrency(code)
	if err != nil {
		return nil, err
	}

	l := &ledger{currency: cur}
	for _, m := range file.Members {
		l.members = append(l.members, models.Member{ID: m.ID, Name: m.Name})
	}

	for i, fe := range file.Expenses {
		id := fe.ID
		if id == "" {
			id = fmt.Sprintf("expense#%d", i+1)
		}
		amount, err := money.ParseExact(fe.Amount, cur)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", id, err)
		}
		e := models.Expense{
			ID:          id,
			Amount:      amount,
			Currency:    cur.Code,
			PaidBy:      fe.PaidBy,
			Category:    fe.Category,
			Description: fe.Description,
		}
		if fe.Date != "" {
			at, err := parseDate(fe.Date)
			if err != nil {
				return nil, fmt.Errorf("expense %s: %w", id, err)
			}
			e.CreatedAt = at.Unix()
		}
		if len(fe.Splits) > 0 {
			for _, sp := range fe.Splits {
				a, err := money.ParseExact(sp.Amount, cur)
				if err != nil {
					return nil, fmt.Errorf("expense %s: %w", id, err)
				}
				e.Splits = append(e.Splits, models.Split{MemberID: sp.MemberID, Amount: a})
			}
		} else {
			participants := fe.Participants
			if len(participants) == 0 {
				participants = l.memberIDs()
			}
			if e.Splits, err = calculator.NormalizeEqualSplit(amount, participants); err != nil {
				return nil, fmt.Errorf("expense %s: %w", id, err)
			}
		}
		l.expenses = append(l.expenses, e)
	}

	for i, fs := range file.Settlements {
		id := fs.ID
		if id == "" {
			id = fmt.Sprintf("settlement#%d", i+1)
		}
		amount, err := money.ParseExact(fs.Amount, cur)
		if err != nil {
			return nil, fmt.Errorf("settlement %s: %w", id, err)
		}
		status := models.SettlementStatus(fs.Status)
		if status == "" {
			status = models.SettlementCompleted
		}
		l.settlements = append(l.settlements, models.Settlement{
			ID:           id,
			FromMemberID: fs.FromMemberID,
			ToMemberID:   fs.ToMemberID,
			Amount:       amount,
			Currency:     cur.Code,
			Status:       status,
			Mode:         fs.Mode,
			Note:         fs.Note,
			CreatedAt:    fs.CreatedAt,
		})
	}
	return l, nil
}

// parseDate accepts a timestamp, a date and time, or a bare date.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, lastErr)
}

// run loads the ledger named by -f and hands it to fn.
func run(fn func(w io.Writer, l *ledger) error) subcommands.ExitStatus {
	l, err := loadLedger(*ledgerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fn(os.Stdout, l); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

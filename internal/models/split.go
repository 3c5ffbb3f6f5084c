package models

import "github.com/mmynk/splitledger/internal/money"

// Split is one member's share of one expense.
// A zero amount means the member is not participating.
type Split struct {
	MemberID string
	Amount   money.Amount
}

// Expense represents one shared cost.
// Sum of Splits must equal Amount within the ledger tolerance.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Amount is the total paid, in minor units. Always > 0.
	Amount money.Amount

	// Currency is the ISO 4217 code, equal to the group currency.
	Currency string

	// PaidBy is the member ID of the payer.
	PaidBy string

	// Category is a free-form tag (e.g., "food", "travel").
	Category string

	// Description is the human-readable label (e.g., "Dinner at Thalassa").
	Description string

	// Splits divide Amount among members.
	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was logged.
	CreatedAt int64
}

// SplitTotal sums the split amounts.
func (e *Expense) SplitTotal() money.Amount {
	var total money.Amount
	for _, s := range e.Splits {
		total += s.Amount
	}
	return total
}

// ExpenseTombstone captures an expense as it was when it was deleted.
// Deleted expenses no longer affect balances.
type ExpenseTombstone struct {
	ExpenseID string
	GroupID   string
	Amount    money.Amount
	PaidBy    string
	Splits    []Split
	Reason    string
	DeletedAt int64
}

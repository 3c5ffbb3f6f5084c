package models

import "github.com/mmynk/splitledger/internal/money"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
)

// Valid reports whether s is a known status.
func (s SettlementStatus) Valid() bool {
	return s == SettlementPending || s == SettlementCompleted
}

// Settlement represents a payment between group members to clear debts.
// Only completed settlements affect balances.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is the payment amount in minor units. Always > 0.
	Amount money.Amount

	// Currency is the ISO 4217 code, equal to the group currency.
	Currency string

	// Status is pending until the payment is confirmed.
	Status SettlementStatus

	// Mode is a free-form payment tag (e.g., "cash", "upi", "bank").
	Mode string

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// GroupBalance is a member's net position.
// Positive means the member is owed money, negative means they owe.
type GroupBalance struct {
	MemberID string
	Balance  money.Amount
}

// SuggestedPayment is one payment proposed by the settlement optimizer.
type SuggestedPayment struct {
	FromMemberID string
	ToMemberID   string
	Amount       money.Amount
}

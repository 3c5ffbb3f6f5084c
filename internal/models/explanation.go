package models

import "github.com/mmynk/splitledger/internal/money"

// BalanceDelta describes how one member's balance moved.
type BalanceDelta struct {
	MemberID string
	Name     string
	Before   money.Amount
	After    money.Amount
	Delta    money.Amount
	Reason   string
}

// Explanation is a human-readable account of a single settlement's effect.
type Explanation struct {
	SettlementID string
	Summary      string
	Deltas       []BalanceDelta
}

// AuditStatus grades a ledger audit.
type AuditStatus string

const (
	AuditOK    AuditStatus = "ok"
	AuditWarn  AuditStatus = "warn"
	AuditError AuditStatus = "error"
)

// LedgerAudit is the result of a tolerant ledger recomputation: balances as
// far as they could be computed, one line per step, and an overall grade.
type LedgerAudit struct {
	Balances []GroupBalance
	Lines    []string
	Residual money.Amount
	Status   AuditStatus
}

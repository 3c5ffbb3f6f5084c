package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/money"
)

var (
	ErrNoParticipants    = errors.New("at least one participant is required")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrNegativeAmount    = errors.New("amounts cannot be negative")
	ErrDuplicateMember   = errors.New("member listed more than once")
	ErrSelfSettlement    = errors.New("settlement must be between two different members")
	ErrUnknownStatus     = errors.New("unknown settlement status")
	ErrUnknownMode       = errors.New("unknown split mode")
)

// SplitMismatchError reports splits that do not add up to their total.
type SplitMismatchError struct {
	Total money.Amount
	Sum   money.Amount
}

func (e *SplitMismatchError) Error() string {
	return fmt.Sprintf("splits sum to %d, expected %d (diff %d minor units)", e.Sum, e.Total, e.Sum-e.Total)
}

// InvalidWeightError rejects weights before any normalization happens.
type InvalidWeightError struct {
	Reason string
}

func (e *InvalidWeightError) Error() string {
	return "invalid split weights: " + e.Reason
}

// LedgerInconsistencyError means creditors and debtors do not cancel out.
// It always points at a bug upstream of the optimizer.
type LedgerInconsistencyError struct {
	Credit money.Amount
	Debit  money.Amount
}

func (e *LedgerInconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistent: total credit %d != total debit %d", e.Credit, e.Debit)
}

// MissingMemberError is returned when a record references someone outside
// the group.
type MissingMemberError struct {
	MemberID string
	Context  string
}

func (e *MissingMemberError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("member %q is not in the group", e.MemberID)
	}
	return fmt.Sprintf("%s: member %q is not in the group", e.Context, e.MemberID)
}

// Package ledgerapi holds the request and response messages of the
// splitledger.v1.LedgerService RPC surface.
//
// Amounts cross the wire as decimal strings in major units of the group
// currency ("12.50"); the service converts them to minor units on entry.
package ledgerapi

import "github.com/shopspring/decimal"

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Currency  string   `json:"currency"`
	Members   []Member `json:"members"`
	CreatedAt int64    `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
	// Currency defaults to the server's configured currency.
	Currency string   `json:"currency,omitempty"`
	Members  []Member `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

// SplitInput describes how to divide an expense.
//
//   - equal: Participants (all group members when empty)
//   - percentage, shares: Weights
//   - custom: Amounts; AutoAdjust scales them to the total instead of
//     rejecting a mismatch
type SplitInput struct {
	Mode         string        `json:"mode"`
	Participants []string      `json:"participants,omitempty"`
	Weights      []WeightInput `json:"weights,omitempty"`
	Amounts      []Split       `json:"amounts,omitempty"`
	AutoAdjust   bool          `json:"autoAdjust,omitempty"`
}

type WeightInput struct {
	MemberID string          `json:"memberId"`
	Value    decimal.Decimal `json:"value"`
}

type Split struct {
	MemberID string          `json:"memberId"`
	Amount   decimal.Decimal `json:"amount"`
}

type PreviewSplitRequest struct {
	GroupID string          `json:"groupId"`
	Amount  decimal.Decimal `json:"amount"`
	Split   SplitInput      `json:"split"`
}

type PreviewSplitResponse struct {
	Currency string  `json:"currency"`
	Splits   []Split `json:"splits"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaidBy      string          `json:"paidBy"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Splits      []Split         `json:"splits"`
	CreatedAt   int64           `json:"createdAt"`
}

type AddExpenseRequest struct {
	GroupID     string          `json:"groupId"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paidBy"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Split       SplitInput      `json:"split"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// EditExpenseRequest replaces an expense's amount and splits. A zero Amount
// keeps the current one; an equal split without participants keeps the
// current split members.
type EditExpenseRequest struct {
	ExpenseID string          `json:"expenseId"`
	Amount    decimal.Decimal `json:"amount"`
	Split     SplitInput      `json:"split"`
}

type EditExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
	Reason    string `json:"reason,omitempty"`
}

type ExpenseTombstone struct {
	ExpenseID string          `json:"expenseId"`
	GroupID   string          `json:"groupId"`
	Amount    decimal.Decimal `json:"amount"`
	PaidBy    string          `json:"paidBy"`
	Splits    []Split         `json:"splits"`
	Reason    string          `json:"reason,omitempty"`
	DeletedAt int64           `json:"deletedAt"`
}

type DeleteExpenseResponse struct {
	Tombstone *ExpenseTombstone `json:"tombstone"`
}

type Settlement struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"groupId"`
	FromMemberID string          `json:"fromMemberId"`
	ToMemberID   string          `json:"toMemberId"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	Mode         string          `json:"mode,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    int64           `json:"createdAt"`
}

type RecordSettlementRequest struct {
	GroupID      string          `json:"groupId"`
	FromMemberID string          `json:"fromMemberId"`
	ToMemberID   string          `json:"toMemberId"`
	Amount       decimal.Decimal `json:"amount"`
	// Status is "pending" (default) or "completed".
	Status string `json:"status,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Note   string `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type CompleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type CompleteSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type MemberBalance struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Balance  decimal.Decimal `json:"balance"`
}

type SuggestedPayment struct {
	FromMemberID string          `json:"fromMemberId"`
	ToMemberID   string          `json:"toMemberId"`
	Amount       decimal.Decimal `json:"amount"`
}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetBalancesResponse struct {
	Currency          string             `json:"currency"`
	Balances          []MemberBalance    `json:"balances"`
	SuggestedPayments []SuggestedPayment `json:"suggestedPayments"`
	// LedgerHash identifies the ledger snapshot the balances were computed from.
	LedgerHash string `json:"ledgerHash"`
}

type ExplainSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type BalanceDelta struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Before   decimal.Decimal `json:"before"`
	After    decimal.Decimal `json:"after"`
	Delta    decimal.Decimal `json:"delta"`
	Reason   string          `json:"reason"`
}

type ExplainSettlementResponse struct {
	SettlementID string         `json:"settlementId"`
	Summary      string         `json:"summary"`
	Deltas       []BalanceDelta `json:"deltas"`
}

type ValidateLedgerRequest struct {
	GroupID string `json:"groupId"`
}

type ValidateLedgerResponse struct {
	Status   string          `json:"status"`
	Residual decimal.Decimal `json:"residual"`
	Lines    []string        `json:"lines"`
	Balances []MemberBalance `json:"balances"`
}

type GetInsightsRequest struct {
	GroupID string `json:"groupId"`
	// Months is how many calendar months MonthlyTotals covers, ending with
	// the current one. Defaults to 6.
	Months int `json:"months,omitempty"`
	// MemberID limits the spending trend to expenses that member paid.
	MemberID string `json:"memberId,omitempty"`
	// From and To bound the category breakdown as Unix timestamps; To is
	// exclusive and zero leaves that end open.
	From int64 `json:"from,omitempty"`
	To   int64 `json:"to,omitempty"`
}

type FairnessReport struct {
	Score               int      `json:"score"`
	Level               string   `json:"level"`
	PaymentDistribution int      `json:"paymentDistribution"`
	SplitEquality       int      `json:"splitEquality"`
	BalanceDistribution int      `json:"balanceDistribution"`
	Issues              []string `json:"issues"`
	Recommendations     []string `json:"recommendations"`
}

type ReliabilityReport struct {
	Score                  int      `json:"score"`
	Level                  string   `json:"level"`
	DataCompleteness       int      `json:"dataCompleteness"`
	SplitAccuracy          int      `json:"splitAccuracy"`
	SettlementCompleteness int      `json:"settlementCompleteness"`
	Warnings               []string `json:"warnings"`
}

type MonthlyTotal struct {
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

type SpendingTrend struct {
	AveragePerMonth decimal.Decimal `json:"averagePerMonth"`
	TrendPercent    float64         `json:"trendPercent"`
	Pattern         string          `json:"pattern"`
	TotalExpenses   int             `json:"totalExpenses"`
	Months          []MonthlyTotal  `json:"months"`
}

type GetInsightsResponse struct {
	Currency      string            `json:"currency"`
	Fairness      FairnessReport    `json:"fairness"`
	Reliability   ReliabilityReport `json:"reliability"`
	MonthlyTotals []MonthlyTotal    `json:"monthlyTotals"`
	Categories    []CategoryTotal   `json:"categories"`
	Trend         SpendingTrend     `json:"trend"`
}

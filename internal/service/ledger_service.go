package service

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
	"github.com/mmynk/splitledger/pkg/ledgerapi/ledgerapiconnect"
)

var _ ledgerapiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// errSettlementCompleted is returned when completing a settlement twice.
var errSettlementCompleted = errors.New("settlement is already completed")

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	store           storage.Store
	tol             calculator.Tolerance
	defaultCurrency string
	metrics         *Metrics
	memo            *balanceMemo
	normalize       normalizeFunc
	now             func() time.Time
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithTolerance overrides calculator.DefaultTolerance.
func WithTolerance(tol calculator.Tolerance) Option {
	return func(s *LedgerService) { s.tol = tol }
}

// WithDefaultCurrency sets the currency of groups created without one.
func WithDefaultCurrency(code string) Option {
	return func(s *LedgerService) { s.defaultCurrency = code }
}

// WithMetrics sets the counters the service reports to.
func WithMetrics(m *Metrics) Option {
	return func(s *LedgerService) { s.metrics = m }
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:           store,
		tol:             calculator.DefaultTolerance,
		defaultCurrency: "INR",
		memo:            newBalanceMemo(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	s.normalize = s.normalizeSplits
	return s
}

// loadLedger fetches a group with its live expenses and all settlements.
func (s *LedgerService) loadLedger(ctx context.Context, groupID string) (*models.Group, []models.Expense, []models.Settlement, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	return group, expenses, settlements, nil
}

// connectError maps domain errors onto Connect codes.
func connectError(err error) error {
	var (
		mismatch     *calculator.SplitMismatchError
		weight       *calculator.InvalidWeightError
		missing      *calculator.MissingMemberError
		inconsistent *calculator.LedgerInconsistencyError
	)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errSettlementCompleted):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &inconsistent):
		return connect.NewError(connect.CodeInternal, err)
	case errors.As(err, &mismatch), errors.As(err, &weight), errors.As(err, &missing),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrNonPositiveAmount),
		errors.Is(err, calculator.ErrNegativeAmount),
		errors.Is(err, calculator.ErrDuplicateMember),
		errors.Is(err, calculator.ErrSelfSettlement),
		errors.Is(err, calculator.ErrUnknownStatus),
		errors.Is(err, calculator.ErrUnknownMode),
		errors.Is(err, money.ErrUnknownCurrency),
		errors.Is(err, money.ErrTooPrecise):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

func toAPIGroup(g *models.Group) *ledgerapi.Group {
	members := make([]ledgerapi.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = ledgerapi.Member{ID: m.ID, Name: m.Name}
	}
	return &ledgerapi.Group{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPISplits(splits []models.Split, cur money.Currency) []ledgerapi.Split {
	out := make([]ledgerapi.Split, len(splits))
	for i, sp := range splits {
		out[i] = ledgerapi.Split{MemberID: sp.MemberID, Amount: sp.Amount.Decimal(cur)}
	}
	return out
}

func toAPIExpense(e *models.Expense, cur money.Currency) *ledgerapi.Expense {
	return &ledgerapi.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Amount:      e.Amount.Decimal(cur),
		Currency:    e.Currency,
		PaidBy:      e.PaidBy,
		Category:    e.Category,
		Description: e.Description,
		Splits:      toAPISplits(e.Splits, cur),
		CreatedAt:   e.CreatedAt,
	}
}

func toAPISettlement(st *models.Settlement, cur money.Currency) *ledgerapi.Settlement {
	return &ledgerapi.Settlement{
		ID:           st.ID,
		GroupID:      st.GroupID,
		FromMemberID: st.FromMemberID,
		ToMemberID:   st.ToMemberID,
		Amount:       st.Amount.Decimal(cur),
		Currency:     st.Currency,
		Status:       string(st.Status),
		Mode:         st.Mode,
		Note:         st.Note,
		CreatedAt:    st.CreatedAt,
	}
}

func toAPIBalances(balances []models.GroupBalance, members []models.Member, cur money.Currency) []ledgerapi.MemberBalance {
	out := make([]ledgerapi.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = ledgerapi.MemberBalance{
			MemberID: b.MemberID,
			Name:     models.MemberName(members, b.MemberID),
			Balance:  b.Balance.Decimal(cur),
		}
	}
	return out
}

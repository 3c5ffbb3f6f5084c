package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// requireMembers checks that every id belongs to the group.
func requireMembers(group *models.Group, ids []string, role string) error {
	for _, id := range ids {
		if !group.HasMember(id) {
			return &calculator.MissingMemberError{MemberID: id, Context: role}
		}
	}
	return nil
}

// normalizeFunc turns a split request into splits of total.
type normalizeFunc func(group *models.Group, cur money.Currency, total money.Amount, in ledgerapi.SplitInput, fallback []string) ([]models.Split, calculator.SplitMode, error)

// resolveSplits normalizes a split request and makes sure the result adds up
// to total, normalizing once more when it does not.
func (s *LedgerService) resolveSplits(group *models.Group, cur money.Currency, total money.Amount, in ledgerapi.SplitInput, fallback []string) ([]models.Split, calculator.SplitMode, error) {
	splits, mode, err := s.normalize(group, cur, total, in, fallback)
	if err != nil {
		return nil, mode, err
	}

	if !s.tol.VerifySplitsSum(splits, total) {
		slog.Warn("Normalized splits do not sum to total, normalizing again",
			"mode", mode,
			"total", int64(total),
			"sum", int64(money.Sum(splitAmounts(splits)...)),
		)
		s.metrics.SplitRenormalized.Inc()
		splits, err = calculator.AdjustCustomSplit(splits, total)
		if err != nil {
			return nil, mode, err
		}
		if !s.tol.VerifySplitsSum(splits, total) {
			return nil, mode, &calculator.SplitMismatchError{Total: total, Sum: money.Sum(splitAmounts(splits)...)}
		}
	}
	return splits, mode, nil
}

// normalizeSplits runs the calculator normalizer for the requested mode.
// An equal split without participants is spread over fallback.
func (s *LedgerService) normalizeSplits(group *models.Group, cur money.Currency, total money.Amount, in ledgerapi.SplitInput, fallback []string) ([]models.Split, calculator.SplitMode, error) {
	mode := calculator.SplitEqual
	if in.Mode != "" {
		m, err := calculator.ParseSplitMode(in.Mode)
		if err != nil {
			return nil, "", err
		}
		mode = m
	}

	var (
		splits []models.Split
		err    error
	)
	switch mode {
	case calculator.SplitEqual:
		ids := in.Participants
		if len(ids) == 0 {
			ids = fallback
		}
		if err := requireMembers(group, ids, "split"); err != nil {
			return nil, mode, err
		}
		splits, err = calculator.NormalizeEqualSplit(total, ids)

	case calculator.SplitPercentage, calculator.SplitShares:
		weights := make([]calculator.Weight, len(in.Weights))
		ids := make([]string, len(in.Weights))
		for i, w := range in.Weights {
			weights[i] = calculator.Weight{MemberID: w.MemberID, Value: w.Value}
			ids[i] = w.MemberID
		}
		if err := requireMembers(group, ids, "split"); err != nil {
			return nil, mode, err
		}
		splits, err = s.tol.NormalizeWeightedSplit(total, mode, weights)

	case calculator.SplitCustom:
		amounts := make([]models.Split, len(in.Amounts))
		ids := make([]string, len(in.Amounts))
		for i, a := range in.Amounts {
			amount, err := money.ParseExact(a.Amount, cur)
			if err != nil {
				return nil, mode, err
			}
			amounts[i] = models.Split{MemberID: a.MemberID, Amount: amount}
			ids[i] = a.MemberID
		}
		if err := requireMembers(group, ids, "split"); err != nil {
			return nil, mode, err
		}
		splits, err = s.tol.NormalizeCustomSplit(amounts, total)
		var mismatch *calculator.SplitMismatchError
		if errors.As(err, &mismatch) && in.AutoAdjust {
			slog.Info("Custom split adjusted to total",
				"total", int64(mismatch.Total),
				"sum", int64(mismatch.Sum),
			)
			splits, err = calculator.AdjustCustomSplit(amounts, total)
		}
	}
	if err != nil {
		return nil, mode, err
	}
	return splits, mode, nil
}

func splitAmounts(splits []models.Split) []money.Amount {
	out := make([]money.Amount, len(splits))
	for i, sp := range splits {
		out[i] = sp.Amount
	}
	return out
}

// parseTotal converts a request amount into minor units of the group currency.
func parseTotal(group *models.Group, amount decimal.Decimal) (money.Currency, money.Amount, error) {
	cur, err := money.LookupCurrency(group.Currency)
	if err != nil {
		return money.Currency{}, 0, err
	}
	total, err := money.ParseExact(amount, cur)
	if err != nil {
		return cur, 0, err
	}
	if total <= 0 {
		return cur, 0, fmt.Errorf("%w: %s", calculator.ErrNonPositiveAmount, amount.String())
	}
	return cur, total, nil
}

// PreviewSplit normalizes a split without recording anything.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[ledgerapi.PreviewSplitRequest]) (*connect.Response[ledgerapi.PreviewSplitResponse], error) {
	slog.Info("PreviewSplit request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"mode", req.Msg.Split.Mode,
	)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("PreviewSplit failed to load group", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	cur, total, err := parseTotal(group, req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}

	splits, mode, err := s.resolveSplits(group, cur, total, req.Msg.Split, group.MemberIDs())
	if err != nil {
		slog.Error("PreviewSplit failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	for _, sp := range splits {
		slog.Debug("Preview split", "member_id", sp.MemberID, "amount", int64(sp.Amount))
	}
	slog.Info("PreviewSplit successful", "group_id", group.ID, "mode", mode, "splits", len(splits))

	return connect.NewResponse(&ledgerapi.PreviewSplitResponse{
		Currency: cur.Code,
		Splits:   toAPISplits(splits, cur),
	}), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// CreateGroup creates a new group with its members.
func (s *LedgerService) CreateGroup(ctx context.Context, req *connect.Request[ledgerapi.CreateGroupRequest]) (*connect.Response[ledgerapi.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"currency", req.Msg.Currency,
		"members_count", len(req.Msg.Members),
	)

	if strings.TrimSpace(req.Msg.Name) == "" {
		return nil, invalidArgument(errors.New("group name is required"))
	}
	if len(req.Msg.Members) == 0 {
		return nil, invalidArgument(errors.New("a group needs at least one member"))
	}

	code := req.Msg.Currency
	if code == "" {
		code = s.defaultCurrency
	}
	cur, err := money.LookupCurrency(code)
	if err != nil {
		return nil, connectError(err)
	}

	group := &models.Group{Name: req.Msg.Name, Currency: cur.Code}
	seen := make(map[string]bool, len(req.Msg.Members))
	for _, m := range req.Msg.Members {
		if m.ID != "" {
			if seen[m.ID] {
				return nil, invalidArgument(fmt.Errorf("member %s listed more than once", m.ID))
			}
			seen[m.ID] = true
		}
		group.Members = append(group.Members, models.Member{ID: m.ID, Name: m.Name})
	}

	// Save to storage (generates IDs and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Group created", "group_id", group.ID, "currency", group.Currency)

	return connect.NewResponse(&ledgerapi.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *LedgerService) GetGroup(ctx context.Context, req *connect.Request[ledgerapi.GetGroupRequest]) (*connect.Response[ledgerapi.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&ledgerapi.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

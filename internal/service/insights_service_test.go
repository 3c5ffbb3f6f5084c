package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

func TestGetInsights(t *testing.T) {
	client, _ := setupTestServer(t)
	group := createTestGroup(t, client)
	addExpense(t, client, group.ID, "A", "300")

	resp, err := client.GetInsights(context.Background(), connect.NewRequest(&ledgerapi.GetInsightsRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetInsights failed: %v", err)
	}
	got := resp.Msg

	// Alice paid everything: payment 0, split 100, balance 33.
	if got.Fairness.Score != 40 || got.Fairness.Level != "unfair" {
		t.Errorf("fairness = %+v", got.Fairness)
	}
	if got.Reliability.Score != 100 || got.Reliability.Level != "high" {
		t.Errorf("reliability = %+v", got.Reliability)
	}

	if len(got.MonthlyTotals) != 6 {
		t.Fatalf("got %d monthly totals, want 6", len(got.MonthlyTotals))
	}
	if current := got.MonthlyTotals[5]; !current.Amount.Equal(dec("300")) || current.Count != 1 {
		t.Errorf("current month = %+v", current)
	}
	if len(got.Categories) != 1 || got.Categories[0].Category != "food" || !got.Categories[0].Amount.Equal(dec("300")) {
		t.Errorf("categories = %+v", got.Categories)
	}
	if got.Trend.Pattern != "sporadic" || !got.Trend.AveragePerMonth.Equal(dec("300")) {
		t.Errorf("trend = %+v", got.Trend)
	}

	resp, err = client.GetInsights(context.Background(), connect.NewRequest(&ledgerapi.GetInsightsRequest{
		GroupID:  group.ID,
		Months:   1,
		MemberID: "B",
	}))
	if err != nil {
		t.Fatalf("GetInsights for a member failed: %v", err)
	}
	if len(resp.Msg.MonthlyTotals) != 1 {
		t.Errorf("monthly totals = %+v", resp.Msg.MonthlyTotals)
	}
	if resp.Msg.Trend.TotalExpenses != 0 {
		t.Errorf("Bob paid nothing, trend = %+v", resp.Msg.Trend)
	}
}

func TestGetInsights_Errors(t *testing.T) {
	client, _ := setupTestServer(t)
	group := createTestGroup(t, client)

	tests := []struct {
		name string
		req  *ledgerapi.GetInsightsRequest
		code connect.Code
	}{
		{"unknown group", &ledgerapi.GetInsightsRequest{GroupID: "missing"}, connect.CodeNotFound},
		{"negative months", &ledgerapi.GetInsightsRequest{GroupID: group.ID, Months: -1}, connect.CodeInvalidArgument},
		{"too many months", &ledgerapi.GetInsightsRequest{GroupID: group.ID, Months: 121}, connect.CodeInvalidArgument},
		{"unknown member", &ledgerapi.GetInsightsRequest{GroupID: group.ID, MemberID: "Z"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetInsights(context.Background(), connect.NewRequest(tt.req))
			if connect.CodeOf(err) != tt.code {
				t.Errorf("code = %v, want %v (err %v)", connect.CodeOf(err), tt.code, err)
			}
		})
	}
}

func TestGetInsights_MonthsEndAtNow(t *testing.T) {
	svc := NewLedgerService(newTestStore(t))
	ctx := context.Background()

	created, err := svc.CreateGroup(ctx, connect.NewRequest(&ledgerapi.CreateGroupRequest{
		Name:    "Flat",
		Members: []ledgerapi.Member{{ID: "A", Name: "Alice"}, {ID: "B", Name: "Bob"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID
	if _, err := svc.AddExpense(ctx, connect.NewRequest(&ledgerapi.AddExpenseRequest{
		GroupID: groupID,
		Amount:  dec("50"),
		PaidBy:  "B",
		Split:   ledgerapi.SplitInput{Mode: "equal"},
	})); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	today := time.Now()
	later := time.Date(today.Year(), today.Month()+2, 15, 0, 0, 0, 0, today.Location())
	svc.now = func() time.Time { return later }

	resp, err := svc.GetInsights(ctx, connect.NewRequest(&ledgerapi.GetInsightsRequest{GroupID: groupID, Months: 3}))
	if err != nil {
		t.Fatalf("GetInsights failed: %v", err)
	}
	totals := resp.Msg.MonthlyTotals
	if len(totals) != 3 {
		t.Fatalf("got %d monthly totals, want 3", len(totals))
	}
	if !totals[0].Amount.Equal(dec("50")) || totals[0].Month != int(today.Month()) {
		t.Errorf("oldest month = %+v, want the expense month", totals[0])
	}
	if !totals[2].Amount.IsZero() || totals[2].Month != int(later.Month()) {
		t.Errorf("current month = %+v, want nothing spent", totals[2])
	}
	if len(resp.Msg.Categories) != 1 || resp.Msg.Categories[0].Category != "Other" {
		t.Errorf("categories = %+v", resp.Msg.Categories)
	}
}

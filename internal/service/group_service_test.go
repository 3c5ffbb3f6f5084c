package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/ledgerapi"
	"github.com/mmynk/splitledger/pkg/ledgerapi/ledgerapiconnect"
)

// newTestStore opens a SQLite store on a temp file removed at cleanup.
func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return store
}

// setupTestServer creates a LedgerService on a temp database behind an
// httptest server and returns a client for it plus the metrics registry.
func setupTestServer(t *testing.T) (*ledgerapiconnect.LedgerServiceClient, *prometheus.Registry) {
	t.Helper()
	store := newTestStore(t)

	reg := prometheus.NewRegistry()
	svc := NewLedgerService(store,
		WithDefaultCurrency("INR"),
		WithMetrics(NewMetrics(reg)),
	)

	path, handler := ledgerapiconnect.NewLedgerServiceHandler(svc)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	client := ledgerapiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL)

	t.Cleanup(server.Close)
	return client, reg
}

// createTestGroup makes an INR group of Alice (A), Bob (B) and Carol (C).
func createTestGroup(t *testing.T, client *ledgerapiconnect.LedgerServiceClient) *ledgerapi.Group {
	t.Helper()
	resp, err := client.CreateGroup(context.Background(), connect.NewRequest(&ledgerapi.CreateGroupRequest{
		Name: "Goa Trip",
		Members: []ledgerapi.Member{
			{ID: "A", Name: "Alice"},
			{ID: "B", Name: "Bob"},
			{ID: "C", Name: "Carol"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("error code = %v, want %v (%v)", got, want, err)
	}
}

// counterValue sums the samples of a counter whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestCreateGroup(t *testing.T) {
	client, _ := setupTestServer(t)
	group := createTestGroup(t, client)

	if group.ID == "" {
		t.Error("expected group ID to be set")
	}
	if group.Currency != "INR" {
		t.Errorf("Currency = %q, want the default INR", group.Currency)
	}
	if group.CreatedAt == 0 {
		t.Error("expected CreatedAt to be set")
	}

	resp, err := client.GetGroup(context.Background(), connect.NewRequest(&ledgerapi.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	got := resp.Msg.Group
	if got.Name != "Goa Trip" {
		t.Errorf("Name = %q, want Goa Trip", got.Name)
	}
	want := []string{"A", "B", "C"}
	if len(got.Members) != len(want) {
		t.Fatalf("got %d members, want %d", len(got.Members), len(want))
	}
	for i, id := range want {
		if got.Members[i].ID != id {
			t.Errorf("member %d = %s, want %s", i, got.Members[i].ID, id)
		}
	}
}

func TestCreateGroup_ExplicitCurrency(t *testing.T) {
	client, _ := setupTestServer(t)

	resp, err := client.CreateGroup(context.Background(), connect.NewRequest(&ledgerapi.CreateGroupRequest{
		Name:     "Tokyo",
		Currency: "jpy",
		Members:  []ledgerapi.Member{{Name: "Ken"}, {Name: "Yui"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if resp.Msg.Group.Currency != "JPY" {
		t.Errorf("Currency = %q, want JPY", resp.Msg.Group.Currency)
	}
	for _, m := range resp.Msg.Group.Members {
		if m.ID == "" {
			t.Errorf("member %s has no ID", m.Name)
		}
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	client, _ := setupTestServer(t)

	tests := []struct {
		name string
		req  *ledgerapi.CreateGroupRequest
	}{
		{
			name: "missing name",
			req:  &ledgerapi.CreateGroupRequest{Members: []ledgerapi.Member{{ID: "A", Name: "Alice"}}},
		},
		{
			name: "no members",
			req:  &ledgerapi.CreateGroupRequest{Name: "Empty"},
		},
		{
			name: "unknown currency",
			req: &ledgerapi.CreateGroupRequest{
				Name:     "Mars",
				Currency: "NOPE",
				Members:  []ledgerapi.Member{{ID: "A", Name: "Alice"}},
			},
		},
		{
			name: "duplicate member",
			req: &ledgerapi.CreateGroupRequest{
				Name:    "Twins",
				Members: []ledgerapi.Member{{ID: "A", Name: "Alice"}, {ID: "A", Name: "Alice again"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateGroup(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	client, _ := setupTestServer(t)

	_, err := client.GetGroup(context.Background(), connect.NewRequest(&ledgerapi.GetGroupRequest{GroupID: "nonexistent"}))
	assertCode(t, err, connect.CodeNotFound)
}

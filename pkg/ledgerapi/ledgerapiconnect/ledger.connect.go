// Package ledgerapiconnect wires the ledgerapi messages to Connect handlers
// and clients.
package ledgerapiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/ledgerapi"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths, relative to the server root.
const (
	LedgerServiceCreateGroupProcedure        = "/splitledger.v1.LedgerService/CreateGroup"
	LedgerServiceGetGroupProcedure           = "/splitledger.v1.LedgerService/GetGroup"
	LedgerServicePreviewSplitProcedure       = "/splitledger.v1.LedgerService/PreviewSplit"
	LedgerServiceAddExpenseProcedure         = "/splitledger.v1.LedgerService/AddExpense"
	LedgerServiceEditExpenseProcedure        = "/splitledger.v1.LedgerService/EditExpense"
	LedgerServiceDeleteExpenseProcedure      = "/splitledger.v1.LedgerService/DeleteExpense"
	LedgerServiceRecordSettlementProcedure   = "/splitledger.v1.LedgerService/RecordSettlement"
	LedgerServiceCompleteSettlementProcedure = "/splitledger.v1.LedgerService/CompleteSettlement"
	LedgerServiceGetBalancesProcedure        = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceExplainSettlementProcedure  = "/splitledger.v1.LedgerService/ExplainSettlement"
	LedgerServiceValidateLedgerProcedure     = "/splitledger.v1.LedgerService/ValidateLedger"
	LedgerServiceGetInsightsProcedure        = "/splitledger.v1.LedgerService/GetInsights"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[ledgerapi.CreateGroupRequest]) (*connect.Response[ledgerapi.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[ledgerapi.GetGroupRequest]) (*connect.Response[ledgerapi.GetGroupResponse], error)
	PreviewSplit(context.Context, *connect.Request[ledgerapi.PreviewSplitRequest]) (*connect.Response[ledgerapi.PreviewSplitResponse], error)
	AddExpense(context.Context, *connect.Request[ledgerapi.AddExpenseRequest]) (*connect.Response[ledgerapi.AddExpenseResponse], error)
	EditExpense(context.Context, *connect.Request[ledgerapi.EditExpenseRequest]) (*connect.Response[ledgerapi.EditExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[ledgerapi.DeleteExpenseRequest]) (*connect.Response[ledgerapi.DeleteExpenseResponse], error)
	RecordSettlement(context.Context, *connect.Request[ledgerapi.RecordSettlementRequest]) (*connect.Response[ledgerapi.RecordSettlementResponse], error)
	CompleteSettlement(context.Context, *connect.Request[ledgerapi.CompleteSettlementRequest]) (*connect.Response[ledgerapi.CompleteSettlementResponse], error)
	GetBalances(context.Context, *connect.Request[ledgerapi.GetBalancesRequest]) (*connect.Response[ledgerapi.GetBalancesResponse], error)
	ExplainSettlement(context.Context, *connect.Request[ledgerapi.ExplainSettlementRequest]) (*connect.Response[ledgerapi.ExplainSettlementResponse], error)
	ValidateLedger(context.Context, *connect.Request[ledgerapi.ValidateLedgerRequest]) (*connect.Response[ledgerapi.ValidateLedgerResponse], error)
	GetInsights(context.Context, *connect.Request[ledgerapi.GetInsightsRequest]) (*connect.Response[ledgerapi.GetInsightsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always registered; opts are applied after it.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(ledgerapi.JSONCodec{})}, opts...)

	handlers := map[string]*connect.Handler{
		LedgerServiceCreateGroupProcedure:        connect.NewUnaryHandler(LedgerServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		LedgerServiceGetGroupProcedure:           connect.NewUnaryHandler(LedgerServiceGetGroupProcedure, svc.GetGroup, opts...),
		LedgerServicePreviewSplitProcedure:       connect.NewUnaryHandler(LedgerServicePreviewSplitProcedure, svc.PreviewSplit, opts...),
		LedgerServiceAddExpenseProcedure:         connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...),
		LedgerServiceEditExpenseProcedure:        connect.NewUnaryHandler(LedgerServiceEditExpenseProcedure, svc.EditExpense, opts...),
		LedgerServiceDeleteExpenseProcedure:      connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		LedgerServiceRecordSettlementProcedure:   connect.NewUnaryHandler(LedgerServiceRecordSettlementProcedure, svc.RecordSettlement, opts...),
		LedgerServiceCompleteSettlementProcedure: connect.NewUnaryHandler(LedgerServiceCompleteSettlementProcedure, svc.CompleteSettlement, opts...),
		LedgerServiceGetBalancesProcedure:        connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...),
		LedgerServiceExplainSettlementProcedure:  connect.NewUnaryHandler(LedgerServiceExplainSettlementProcedure, svc.ExplainSettlement, opts...),
		LedgerServiceValidateLedgerProcedure:     connect.NewUnaryHandler(LedgerServiceValidateLedgerProcedure, svc.ValidateLedger, opts...),
		LedgerServiceGetInsightsProcedure:        connect.NewUnaryHandler(LedgerServiceGetInsightsProcedure, svc.GetInsights, opts...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// LedgerServiceClient is a client for LedgerService.
type LedgerServiceClient struct {
	createGroup        *connect.Client[ledgerapi.CreateGroupRequest, ledgerapi.CreateGroupResponse]
	getGroup           *connect.Client[ledgerapi.GetGroupRequest, ledgerapi.GetGroupResponse]
	previewSplit       *connect.Client[ledgerapi.PreviewSplitRequest, ledgerapi.PreviewSplitResponse]
	addExpense         *connect.Client[ledgerapi.AddExpenseRequest, ledgerapi.AddExpenseResponse]
	editExpense        *connect.Client[ledgerapi.EditExpenseRequest, ledgerapi.EditExpenseResponse]
	deleteExpense      *connect.Client[ledgerapi.DeleteExpenseRequest, ledgerapi.DeleteExpenseResponse]
	recordSettlement   *connect.Client[ledgerapi.RecordSettlementRequest, ledgerapi.RecordSettlementResponse]
	completeSettlement *connect.Client[ledgerapi.CompleteSettlementRequest, ledgerapi.CompleteSettlementResponse]
	getBalances        *connect.Client[ledgerapi.GetBalancesRequest, ledgerapi.GetBalancesResponse]
	explainSettlement  *connect.Client[ledgerapi.ExplainSettlementRequest, ledgerapi.ExplainSettlementResponse]
	validateLedger     *connect.Client[ledgerapi.ValidateLedgerRequest, ledgerapi.ValidateLedgerResponse]
	getInsights        *connect.Client[ledgerapi.GetInsightsRequest, ledgerapi.GetInsightsResponse]
}

// NewLedgerServiceClient constructs a client for LedgerService at baseURL
// (for example, http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(ledgerapi.JSONCodec{})}, opts...)
	return &LedgerServiceClient{
		createGroup:        connect.NewClient[ledgerapi.CreateGroupRequest, ledgerapi.CreateGroupResponse](httpClient, baseURL+LedgerServiceCreateGroupProcedure, opts...),
		getGroup:           connect.NewClient[ledgerapi.GetGroupRequest, ledgerapi.GetGroupResponse](httpClient, baseURL+LedgerServiceGetGroupProcedure, opts...),
		previewSplit:       connect.NewClient[ledgerapi.PreviewSplitRequest, ledgerapi.PreviewSplitResponse](httpClient, baseURL+LedgerServicePreviewSplitProcedure, opts...),
		addExpense:         connect.NewClient[ledgerapi.AddExpenseRequest, ledgerapi.AddExpenseResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		editExpense:        connect.NewClient[ledgerapi.EditExpenseRequest, ledgerapi.EditExpenseResponse](httpClient, baseURL+LedgerServiceEditExpenseProcedure, opts...),
		deleteExpense:      connect.NewClient[ledgerapi.DeleteExpenseRequest, ledgerapi.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		recordSettlement:   connect.NewClient[ledgerapi.RecordSettlementRequest, ledgerapi.RecordSettlementResponse](httpClient, baseURL+LedgerServiceRecordSettlementProcedure, opts...),
		completeSettlement: connect.NewClient[ledgerapi.CompleteSettlementRequest, ledgerapi.CompleteSettlementResponse](httpClient, baseURL+LedgerServiceCompleteSettlementProcedure, opts...),
		getBalances:        connect.NewClient[ledgerapi.GetBalancesRequest, ledgerapi.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		explainSettlement:  connect.NewClient[ledgerapi.ExplainSettlementRequest, ledgerapi.ExplainSettlementResponse](httpClient, baseURL+LedgerServiceExplainSettlementProcedure, opts...),
		validateLedger:     connect.NewClient[ledgerapi.ValidateLedgerRequest, ledgerapi.ValidateLedgerResponse](httpClient, baseURL+LedgerServiceValidateLedgerProcedure, opts...),
		getInsights:        connect.NewClient[ledgerapi.GetInsightsRequest, ledgerapi.GetInsightsResponse](httpClient, baseURL+LedgerServiceGetInsightsProcedure, opts...),
	}
}

// CreateGroup calls splitledger.v1.LedgerService.CreateGroup.
func (c *LedgerServiceClient) CreateGroup(ctx context.Context, req *connect.Request[ledgerapi.CreateGroupRequest]) (*connect.Response[ledgerapi.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

// GetGroup calls splitledger.v1.LedgerService.GetGroup.
func (c *LedgerServiceClient) GetGroup(ctx context.Context, req *connect.Request[ledgerapi.GetGroupRequest]) (*connect.Response[ledgerapi.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

// PreviewSplit calls splitledger.v1.LedgerService.PreviewSplit.
func (c *LedgerServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[ledgerapi.PreviewSplitRequest]) (*connect.Response[ledgerapi.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

// AddExpense calls splitledger.v1.LedgerService.AddExpense.
func (c *LedgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[ledgerapi.AddExpenseRequest]) (*connect.Response[ledgerapi.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

// EditExpense calls splitledger.v1.LedgerService.EditExpense.
func (c *LedgerServiceClient) EditExpense(ctx context.Context, req *connect.Request[ledgerapi.EditExpenseRequest]) (*connect.Response[ledgerapi.EditExpenseResponse], error) {
	return c.editExpense.CallUnary(ctx, req)
}

// DeleteExpense calls splitledger.v1.LedgerService.DeleteExpense.
func (c *LedgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[ledgerapi.DeleteExpenseRequest]) (*connect.Response[ledgerapi.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

// RecordSettlement calls splitledger.v1.LedgerService.RecordSettlement.
func (c *LedgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[ledgerapi.RecordSettlementRequest]) (*connect.Response[ledgerapi.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

// CompleteSettlement calls splitledger.v1.LedgerService.CompleteSettlement.
func (c *LedgerServiceClient) CompleteSettlement(ctx context.Context, req *connect.Request[ledgerapi.CompleteSettlementRequest]) (*connect.Response[ledgerapi.CompleteSettlementResponse], error) {
	return c.completeSettlement.CallUnary(ctx, req)
}

// GetBalances calls splitledger.v1.LedgerService.GetBalances.
func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[ledgerapi.GetBalancesRequest]) (*connect.Response[ledgerapi.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

// ExplainSettlement calls splitledger.v1.LedgerService.ExplainSettlement.
func (c *LedgerServiceClient) ExplainSettlement(ctx context.Context, req *connect.Request[ledgerapi.ExplainSettlementRequest]) (*connect.Response[ledgerapi.ExplainSettlementResponse], error) {
	return c.explainSettlement.CallUnary(ctx, req)
}

// ValidateLedger calls splitledger.v1.LedgerService.ValidateLedger.
func (c *LedgerServiceClient) ValidateLedger(ctx context.Context, req *connect.Request[ledgerapi.ValidateLedgerRequest]) (*connect.Response[ledgerapi.ValidateLedgerResponse], error) {
	return c.validateLedger.CallUnary(ctx, req)
}

// GetInsights calls splitledger.v1.LedgerService.GetInsights.
func (c *LedgerServiceClient) GetInsights(ctx context.Context, req *connect.Request[ledgerapi.GetInsightsRequest]) (*connect.Response[ledgerapi.GetInsightsResponse], error) {
	return c.getInsights.CallUnary(ctx, req)
}

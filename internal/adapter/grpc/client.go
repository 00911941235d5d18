package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls gastos.v1.LedgerService over an existing connection using the JSON codec
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a client on top of conn
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RegisterPerson(ctx context.Context, req *RegisterPersonRequest, opts ...grpc.CallOption) (*RegisterPersonResponse, error) {
	return invoke[RegisterPersonResponse](ctx, c, "RegisterPerson", req, opts...)
}

func (c *Client) CreateLedger(ctx context.Context, req *CreateLedgerRequest, opts ...grpc.CallOption) (*LedgerResponse, error) {
	return invoke[LedgerResponse](ctx, c, "CreateLedger", req, opts...)
}

func (c *Client) GetLedger(ctx context.Context, req *GetLedgerRequest, opts ...grpc.CallOption) (*LedgerResponse, error) {
	return invoke[LedgerResponse](ctx, c, "GetLedger", req, opts...)
}

func (c *Client) ListLedgers(ctx context.Context, req *ListLedgersRequest, opts ...grpc.CallOption) (*ListLedgersResponse, error) {
	return invoke[ListLedgersResponse](ctx, c, "ListLedgers", req, opts...)
}

func (c *Client) RedefinePercentages(ctx context.Context, req *RedefinePercentagesRequest, opts ...grpc.CallOption) (*LedgerResponse, error) {
	return invoke[LedgerResponse](ctx, c, "RedefinePercentages", req, opts...)
}

func (c *Client) LogExpense(ctx context.Context, req *LogExpenseRequest, opts ...grpc.CallOption) (*ExpenseResponse, error) {
	return invoke[ExpenseResponse](ctx, c, "LogExpense", req, opts...)
}

func (c *Client) UpdateExpense(ctx context.Context, req *UpdateExpenseRequest, opts ...grpc.CallOption) (*ExpenseResponse, error) {
	return invoke[ExpenseResponse](ctx, c, "UpdateExpense", req, opts...)
}

func (c *Client) DeleteExpense(ctx context.Context, req *DeleteExpenseRequest, opts ...grpc.CallOption) (*ExpenseResponse, error) {
	return invoke[ExpenseResponse](ctx, c, "DeleteExpense", req, opts...)
}

func (c *Client) ListExpenses(ctx context.Context, req *ListExpensesRequest, opts ...grpc.CallOption) (*ListExpensesResponse, error) {
	return invoke[ListExpensesResponse](ctx, c, "ListExpenses", req, opts...)
}

func (c *Client) ListCategories(ctx context.Context, req *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c, "ListCategories", req, opts...)
}

func (c *Client) CreateAlert(ctx context.Context, req *CreateAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error) {
	return invoke[AlertResponse](ctx, c, "CreateAlert", req, opts...)
}

func (c *Client) DeleteAlert(ctx context.Context, req *DeleteAlertRequest, opts ...grpc.CallOption) (*DeleteAlertResponse, error) {
	return invoke[DeleteAlertResponse](ctx, c, "DeleteAlert", req, opts...)
}

func (c *Client) ListAlerts(ctx context.Context, req *ListAlertsRequest, opts ...grpc.CallOption) (*ListAlertsResponse, error) {
	return invoke[ListAlertsResponse](ctx, c, "ListAlerts", req, opts...)
}

func (c *Client) ListNotifications(ctx context.Context, req *ListNotificationsRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error) {
	return invoke[ListNotificationsResponse](ctx, c, "ListNotifications", req, opts...)
}

func (c *Client) ClearHistory(ctx context.Context, req *ClearHistoryRequest, opts ...grpc.CallOption) (*ClearHistoryResponse, error) {
	return invoke[ClearHistoryResponse](ctx, c, "ClearHistory", req, opts...)
}

func (c *Client) GetSummary(ctx context.Context, req *GetSummaryRequest, opts ...grpc.CallOption) (*GetSummaryResponse, error) {
	return invoke[GetSummaryResponse](ctx, c, "GetSummary", req, opts...)
}

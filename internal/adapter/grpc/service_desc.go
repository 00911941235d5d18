package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "gastos.v1.LedgerService"

// LedgerServiceServer is the server API for gastos.v1.LedgerService
type LedgerServiceServer interface {
	RegisterPerson(context.Context, *RegisterPersonRequest) (*RegisterPersonResponse, error)
	CreateLedger(context.Context, *CreateLedgerRequest) (*LedgerResponse, error)
	GetLedger(context.Context, *GetLedgerRequest) (*LedgerResponse, error)
	ListLedgers(context.Context, *ListLedgersRequest) (*ListLedgersResponse, error)
	RedefinePercentages(context.Context, *RedefinePercentagesRequest) (*LedgerResponse, error)
	LogExpense(context.Context, *LogExpenseRequest) (*ExpenseResponse, error)
	UpdateExpense(context.Context, *UpdateExpenseRequest) (*ExpenseResponse, error)
	DeleteExpense(context.Context, *DeleteExpenseRequest) (*ExpenseResponse, error)
	ListExpenses(context.Context, *ListExpensesRequest) (*ListExpensesResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	CreateAlert(context.Context, *CreateAlertRequest) (*AlertResponse, error)
	DeleteAlert(context.Context, *DeleteAlertRequest) (*DeleteAlertResponse, error)
	ListAlerts(context.Context, *ListAlertsRequest) (*ListAlertsResponse, error)
	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
	ClearHistory(context.Context, *ClearHistoryRequest) (*ClearHistoryResponse, error)
	GetSummary(context.Context, *GetSummaryRequest) (*GetSummaryResponse, error)
}

// unaryHandler builds a grpc.MethodHandler that decodes Req and dispatches to call
func unaryHandler[Req, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerServiceDesc describes gastos.v1.LedgerService for grpc.Server.RegisterService
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterPerson", Handler: unaryHandler("RegisterPerson", LedgerServiceServer.RegisterPerson)},
		{MethodName: "CreateLedger", Handler: unaryHandler("CreateLedger", LedgerServiceServer.CreateLedger)},
		{MethodName: "GetLedger", Handler: unaryHandler("GetLedger", LedgerServiceServer.GetLedger)},
		{MethodName: "ListLedgers", Handler: unaryHandler("ListLedgers", LedgerServiceServer.ListLedgers)},
		{MethodName: "RedefinePercentages", Handler: unaryHandler("RedefinePercentages", LedgerServiceServer.RedefinePercentages)},
		{MethodName: "LogExpense", Handler: unaryHandler("LogExpense", LedgerServiceServer.LogExpense)},
		{MethodName: "UpdateExpense", Handler: unaryHandler("UpdateExpense", LedgerServiceServer.UpdateExpense)},
		{MethodName: "DeleteExpense", Handler: unaryHandler("DeleteExpense", LedgerServiceServer.DeleteExpense)},
		{MethodName: "ListExpenses", Handler: unaryHandler("ListExpenses", LedgerServiceServer.ListExpenses)},
		{MethodName: "ListCategories", Handler: unaryHandler("ListCategories", LedgerServiceServer.ListCategories)},
		{MethodName: "CreateAlert", Handler: unaryHandler("CreateAlert", LedgerServiceServer.CreateAlert)},
		{MethodName: "DeleteAlert", Handler: unaryHandler("DeleteAlert", LedgerServiceServer.DeleteAlert)},
		{MethodName: "ListAlerts", Handler: unaryHandler("ListAlerts", LedgerServiceServer.ListAlerts)},
		{MethodName: "ListNotifications", Handler: unaryHandler("ListNotifications", LedgerServiceServer.ListNotifications)},
		{MethodName: "ClearHistory", Handler: unaryHandler("ClearHistory", LedgerServiceServer.ClearHistory)},
		{MethodName: "GetSummary", Handler: unaryHandler("GetSummary", LedgerServiceServer.GetSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gastos/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

package grpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gestiongastos/backend/internal/domain"
	"github.com/gestiongastos/backend/internal/usecase/alerting"
	"github.com/gestiongastos/backend/internal/usecase/category"
	"github.com/gestiongastos/backend/internal/usecase/dashboard"
	"github.com/gestiongastos/backend/internal/usecase/expense"
	"github.com/gestiongastos/backend/internal/usecase/ledger"
)

// Server implements the LedgerService gRPC server.
// Ledgers and alerts are not safe for concurrent use, so mutating RPCs hold
// the write lock and queries hold the read lock.
type Server struct {
	LedgerService    *ledger.LedgerService
	ExpenseService   *expense.ExpenseService
	CategoryService  *category.CategoryService
	AlertingService  *alerting.AlertingService
	DashboardService *dashboard.DashboardService

	mu sync.RWMutex
}

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.LedgerService,
	expenseService *expense.ExpenseService,
	categoryService *category.CategoryService,
	alertingService *alerting.AlertingService,
	dashboardService *dashboard.DashboardService,
) *Server {
	return &Server{
		LedgerService:    ledgerService,
		ExpenseService:   expenseService,
		CategoryService:  categoryService,
		AlertingService:  alertingService,
		DashboardService: dashboardService,
	}
}

var _ LedgerServiceServer = (*Server)(nil)

// RegisterPerson handles the RegisterPerson RPC
func (s *Server) RegisterPerson(ctx context.Context, req *RegisterPersonRequest) (*RegisterPersonResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	person, personal, err := s.LedgerService.RegisterPerson(ctx, ledger.RegisterPersonInput{
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &RegisterPersonResponse{
		PersonID:         person.ID.String(),
		PersonalLedgerID: personal.ID.String(),
	}, nil
}

// CreateLedger handles the CreateLedger RPC
func (s *Server) CreateLedger(ctx context.Context, req *CreateLedgerRequest) (*LedgerResponse, error) {
	participantIDs := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := parseID("participant_ids", raw)
		if err != nil {
			return nil, err
		}
		participantIDs = append(participantIDs, id)
	}

	percentages, err := parsePercentages(req.Percentages)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.LedgerService.CreateLedger(ctx, ledger.CreateLedgerInput{
		Name:           req.Name,
		ParticipantIDs: participantIDs,
		Percentages:    percentages,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &LedgerResponse{Ledger: ledgerToWire(created)}, nil
}

// GetLedger handles the GetLedger RPC
func (s *Server) GetLedger(ctx context.Context, req *GetLedgerRequest) (*LedgerResponse, error) {
	ledgerID, err := parseID("ledger_id", req.LedgerID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := s.LedgerService.GetLedger(ctx, ledgerID)
	if err != nil {
		return nil, mapError(err)
	}

	return &LedgerResponse{Ledger: ledgerToWire(found)}, nil
}

// ListLedgers handles the ListLedgers RPC
func (s *Server) ListLedgers(ctx context.Context, req *ListLedgersRequest) (*ListLedgersResponse, error) {
	personID, err := parseID("person_id", req.PersonID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ledgers, err := s.LedgerService.ListLedgers(ctx, personID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListLedgersResponse{Ledgers: make([]*Ledger, 0, len(ledgers))}
	for _, l := range ledgers {
		resp.Ledgers = append(resp.Ledgers, ledgerToWire(l))
	}
	return resp, nil
}

// RedefinePercentages handles the RedefinePercentages RPC
func (s *Server) RedefinePercentages(ctx context.Context, req *RedefinePercentagesRequest) (*LedgerResponse, error) {
	ledgerID, err := parseID("ledger_id", req.LedgerID)
	if err != nil {
		return nil, err
	}
	percentages, err := parsePercentages(req.Percentages)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.LedgerService.RedefinePercentages(ctx, ledgerID, percentages)
	if err != nil {
		return nil, mapError(err)
	}

	return &LedgerResponse{Ledger: ledgerToWire(updated)}, nil
}

// LogExpense handles the LogExpense RPC
func (s *Server) LogExpense(ctx context.Context, req *LogExpenseRequest) (*ExpenseResponse, error) {
	ledgerID, err := parseID("ledger_id", req.LedgerID)
	if err != nil {
		return nil, err
	}
	payerID, err := parseID("payer_id", req.PayerID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	var date time.Time
	if req.Date != "" {
		if date, err = parseDate(req.Date); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logged, err := s.ExpenseService.LogExpense(ctx, expense.LogExpenseInput{
		LedgerID:    ledgerID,
		PayerID:     payerID,
		Amount:      amount,
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &ExpenseResponse{Expense: expenseToWire(*logged)}, nil
}

// UpdateExpense handles the UpdateExpense RPC
func (s *Server) UpdateExpense(ctx context.Context, req *UpdateExpenseRequest) (*ExpenseResponse, error) {
	expenseID, err := parseID("expense_id", req.ExpenseID)
	if err != nil {
		return nil, err
	}

	input := expense.UpdateExpenseInput{
		ExpenseID:   expenseID,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.LedgerID != nil {
		id, err := parseID("ledger_id", *req.LedgerID)
		if err != nil {
			return nil, err
		}
		input.LedgerID = &id
	}
	if req.PayerID != nil {
		id, err := parseID("payer_id", *req.PayerID)
		if err != nil {
			return nil, err
		}
		input.PayerID = &id
	}
	if req.Amount != nil {
		amount, err := parseAmount("amount", *req.Amount)
		if err != nil {
			return nil, err
		}
		input.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		input.Date = &date
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.ExpenseService.UpdateExpense(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return &ExpenseResponse{Expense: expenseToWire(*updated)}, nil
}

// DeleteExpense handles the DeleteExpense RPC
func (s *Server) DeleteExpense(ctx context.Context, req *DeleteExpenseRequest) (*ExpenseResponse, error) {
	expenseID, err := parseID("expense_id", req.ExpenseID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.ExpenseService.DeleteExpense(ctx, expenseID)
	if err != nil {
		return nil, mapError(err)
	}

	return &ExpenseResponse{Expense: expenseToWire(*removed)}, nil
}

// ListExpenses handles the ListExpenses RPC
func (s *Server) ListExpenses(ctx context.Context, req *ListExpensesRequest) (*ListExpensesResponse, error) {
	personID, err := parseID("person_id", req.PersonID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses, err := s.ExpenseService.ListExpenses(ctx, personID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListExpensesResponse{Expenses: make([]*Expense, 0, len(expenses))}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, expenseToWire(e))
	}
	return resp, nil
}

// ListCategories handles the ListCategories RPC
func (s *Server) ListCategories(ctx context.Context, _ *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.CategoryService.ListCategoryNames(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return &ListCategoriesResponse{Names: names}, nil
}

// CreateAlert handles the CreateAlert RPC
func (s *Server) CreateAlert(ctx context.Context, req *CreateAlertRequest) (*AlertResponse, error) {
	ownerID, err := parseID("owner_id", req.OwnerID)
	if err != nil {
		return nil, err
	}
	threshold, err := parseAmount("threshold", req.Threshold)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.AlertingService.CreateAlert(ctx, alerting.CreateAlertInput{
		OwnerID:      ownerID,
		Name:         req.Name,
		Periodicity:  req.Periodicity,
		Category:     req.Category,
		Threshold:    threshold,
		HistoryLimit: req.HistoryLimit,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &AlertResponse{Alert: alertToWire(created)}, nil
}

// DeleteAlert handles the DeleteAlert RPC
func (s *Server) DeleteAlert(ctx context.Context, req *DeleteAlertRequest) (*DeleteAlertResponse, error) {
	alertID, err := parseID("alert_id", req.AlertID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.AlertingService.DeleteAlert(ctx, alertID); err != nil {
		return nil, mapError(err)
	}
	return &DeleteAlertResponse{}, nil
}

// ListAlerts handles the ListAlerts RPC
func (s *Server) ListAlerts(ctx context.Context, req *ListAlertsRequest) (*ListAlertsResponse, error) {
	ownerID, err := parseID("owner_id", req.OwnerID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts, err := s.AlertingService.ListAlerts(ctx, ownerID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListAlertsResponse{Alerts: make([]*Alert, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, alertToWire(a))
	}
	return resp, nil
}

// ListNotifications handles the ListNotifications RPC
func (s *Server) ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	alertID, err := parseID("alert_id", req.AlertID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications, err := s.AlertingService.RecentNotifications(ctx, alertID, req.Limit)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListNotificationsResponse{Notifications: make([]*Notification, 0, len(notifications))}
	for _, n := range notifications {
		resp.Notifications = append(resp.Notifications, &Notification{
			ID:        n.ID.String(),
			AlertID:   n.AlertID.String(),
			Timestamp: n.Timestamp.Format(time.RFC3339),
			Message:   n.Message,
		})
	}
	return resp, nil
}

// ClearHistory handles the ClearHistory RPC
func (s *Server) ClearHistory(ctx context.Context, req *ClearHistoryRequest) (*ClearHistoryResponse, error) {
	alertID, err := parseID("alert_id", req.AlertID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.AlertingService.ClearHistory(ctx, alertID); err != nil {
		return nil, mapError(err)
	}
	return &ClearHistoryResponse{}, nil
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *GetSummaryRequest) (*GetSummaryResponse, error) {
	personID, err := parseID("person_id", req.PersonID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, err := s.DashboardService.GetSummary(ctx, personID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &GetSummaryResponse{
		Ledgers:    make([]*LedgerSummary, 0, len(result.Ledgers)),
		OwedToMe:   result.OwedToMe.StringFixed(2),
		IOwe:       result.IOwe.StringFixed(2),
		Net:        result.Net.StringFixed(2),
		MonthSpend: result.MonthSpend.StringFixed(2),
	}
	for _, l := range result.Ledgers {
		resp.Ledgers = append(resp.Ledgers, &LedgerSummary{
			LedgerID:   l.LedgerID.String(),
			Name:       l.Name,
			Percentage: l.Percentage,
			Balance:    l.Balance.StringFixed(2),
		})
	}
	return resp, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return amount, nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid date format: %v", err)
	}
	return date, nil
}

func parsePercentages(raw map[string]float64) (map[uuid.UUID]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[uuid.UUID]float64, len(raw))
	for key, pct := range raw {
		id, err := parseID("percentages", key)
		if err != nil {
			return nil, err
		}
		out[id] = pct
	}
	return out, nil
}

// ledgerToWire converts a domain SharedLedger to its wire message
func ledgerToWire(l *domain.SharedLedger) *Ledger {
	msg := &Ledger{
		ID:               l.ID.String(),
		Name:             l.Name,
		PercentagesFixed: l.PercentagesFixed(),
	}
	for _, p := range l.Participants() {
		msg.Participants = append(msg.Participants, &Participant{
			PersonID:   p.Person.ID.String(),
			Username:   p.Person.Username,
			Percentage: p.Percentage,
			Balance:    p.Balance.StringFixed(2),
		})
	}
	for _, e := range l.Expenses() {
		msg.Expenses = append(msg.Expenses, expenseToWire(e))
	}
	return msg
}

// expenseToWire converts a domain Expense to its wire message
func expenseToWire(e domain.Expense) *Expense {
	return &Expense{
		ID:          e.ID.String(),
		LedgerID:    e.LedgerID.String(),
		Amount:      e.Amount.StringFixed(2),
		Date:        e.Date.Format(time.DateOnly),
		Category:    e.Category.Name,
		PayerID:     e.PayerID.String(),
		Description: e.Description,
	}
}

// alertToWire converts a domain Alert to its wire message
func alertToWire(a *domain.Alert) *Alert {
	msg := &Alert{
		ID:           a.ID.String(),
		OwnerID:      a.OwnerID.String(),
		Name:         a.Name,
		Periodicity:  string(a.Periodicity),
		Category:     domain.AllCategoriesLabel,
		HistoryLimit: a.HistoryLimit,
	}
	if a.Category != nil {
		msg.Category = a.Category.Name
	}
	if t, ok := a.Strategy.(domain.ThresholdStrategy); ok {
		msg.Threshold = t.Threshold.StringFixed(2)
	}
	return msg
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "%s", err.Error())
	}
}

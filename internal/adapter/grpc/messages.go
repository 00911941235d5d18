package grpc

// Wire messages of gastos.v1.LedgerService.
// IDs are UUID strings, money is a decimal string and dates use YYYY-MM-DD.

type RegisterPersonRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

type RegisterPersonResponse struct {
	PersonID         string `json:"person_id"`
	PersonalLedgerID string `json:"personal_ledger_id"`
}

type CreateLedgerRequest struct {
	Name           string             `json:"name"`
	ParticipantIDs []string           `json:"participant_ids"`
	Percentages    map[string]float64 `json:"percentages,omitempty"`
}

type GetLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type ListLedgersRequest struct {
	PersonID string `json:"person_id"`
}

type ListLedgersResponse struct {
	Ledgers []*Ledger `json:"ledgers"`
}

type RedefinePercentagesRequest struct {
	LedgerID    string             `json:"ledger_id"`
	Percentages map[string]float64 `json:"percentages"`
}

type LedgerResponse struct {
	Ledger *Ledger `json:"ledger"`
}

type Ledger struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	PercentagesFixed bool           `json:"percentages_fixed"`
	Participants     []*Participant `json:"participants"`
	Expenses         []*Expense     `json:"expenses"`
}

type Participant struct {
	PersonID   string  `json:"person_id"`
	Username   string  `json:"username"`
	Percentage float64 `json:"percentage"`
	Balance    string  `json:"balance"`
}

type Expense struct {
	ID          string `json:"id"`
	LedgerID    string `json:"ledger_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	PayerID     string `json:"payer_id"`
	Description string `json:"description,omitempty"`
}

type LogExpenseRequest struct {
	LedgerID    string `json:"ledger_id"`
	PayerID     string `json:"payer_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"` // Empty means today
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// UpdateExpenseRequest changes only the fields that are set
type UpdateExpenseRequest struct {
	ExpenseID   string  `json:"expense_id"`
	LedgerID    *string `json:"ledger_id,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Date        *string `json:"date,omitempty"`
	Category    *string `json:"category,omitempty"`
	PayerID     *string `json:"payer_id,omitempty"`
	Description *string `json:"description,omitempty"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type ExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	PersonID string `json:"person_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Names []string `json:"names"`
}

type CreateAlertRequest struct {
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Periodicity  string `json:"periodicity"`
	Category     string `json:"category,omitempty"` // Empty or "All" means every category
	Threshold    string `json:"threshold"`
	HistoryLimit *int   `json:"history_limit,omitempty"`
}

type AlertResponse struct {
	Alert *Alert `json:"alert"`
}

type Alert struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Periodicity  string `json:"periodicity"`
	Category     string `json:"category"`
	Threshold    string `json:"threshold,omitempty"`
	HistoryLimit int    `json:"history_limit"`
}

type DeleteAlertRequest struct {
	AlertID string `json:"alert_id"`
}

type DeleteAlertResponse struct{}

type ListAlertsRequest struct {
	OwnerID string `json:"owner_id"`
}

type ListAlertsResponse struct {
	Alerts []*Alert `json:"alerts"`
}

type ListNotificationsRequest struct {
	AlertID string `json:"alert_id"`
	Limit   int    `json:"limit"`
}

type ListNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

type Notification struct {
	ID        string `json:"id"`
	AlertID   string `json:"alert_id"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type ClearHistoryRequest struct {
	AlertID string `json:"alert_id"`
}

type ClearHistoryResponse struct{}

type GetSummaryRequest struct {
	PersonID string `json:"person_id"`
}

type GetSummaryResponse struct {
	Ledgers    []*LedgerSummary `json:"ledgers"`
	OwedToMe   string           `json:"owed_to_me"`
	IOwe       string           `json:"i_owe"`
	Net        string           `json:"net"`
	MonthSpend string           `json:"month_spend"`
}

type LedgerSummary struct {
	LedgerID   string  `json:"ledger_id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Balance    string  `json:"balance"`
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gestiongastos/backend/internal/domain"
)

// ledgerRepository implements domain.LedgerRepository.
// A ledger is persisted across ledgers, ledger_participants and expenses;
// balances are stored as computed and reloaded without recalculation.
type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *DB) domain.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Create creates a new ledger with its participants and expenses
func (r *ledgerRepository) Create(ctx context.Context, ledger *domain.SharedLedger) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO ledgers (id, name, percentages_fixed)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, ledger.ID, ledger.Name, ledger.PercentagesFixed()); err != nil {
			return fmt.Errorf("failed to create ledger: %w", err)
		}

		insertParticipant := `
			INSERT INTO ledger_participants (ledger_id, person_id, position, percentage, balance)
			VALUES ($1, $2, $3, $4, $5)
		`
		for i, p := range ledger.Participants() {
			if _, err := tx.ExecContext(ctx, insertParticipant,
				ledger.ID,
				p.Person.ID,
				i,
				p.Percentage,
				p.Balance.StringFixed(2),
			); err != nil {
				return fmt.Errorf("failed to create ledger participant: %w", err)
			}
		}

		return saveExpenses(ctx, tx, ledger)
	})
}

// Save replaces the stored name, shares, balances and expense list of a ledger
func (r *ledgerRepository) Save(ctx context.Context, ledger *domain.SharedLedger) error {
	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE ledgers
			SET name = $2, percentages_fixed = $3
			WHERE id = $1
		`
		result, err := tx.ExecContext(ctx, query, ledger.ID, ledger.Name, ledger.PercentagesFixed())
		if err != nil {
			return fmt.Errorf("failed to update ledger: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("ledger %s: %w", ledger.ID, domain.ErrNotFound)
		}

		updateParticipant := `
			UPDATE ledger_participants
			SET percentage = $3, balance = $4
			WHERE ledger_id = $1 AND person_id = $2
		`
		for _, p := range ledger.Participants() {
			if _, err := tx.ExecContext(ctx, updateParticipant,
				ledger.ID,
				p.Person.ID,
				p.Percentage,
				p.Balance.StringFixed(2),
			); err != nil {
				return fmt.Errorf("failed to update ledger participant: %w", err)
			}
		}

		return saveExpenses(ctx, tx, ledger)
	})
}

// saveExpenses upserts the ledger's expenses in order and drops the ones it no longer holds.
// An expense moved from another ledger is re-pointed by the upsert.
func saveExpenses(ctx context.Context, tx *sql.Tx, ledger *domain.SharedLedger) error {
	upsert := `
		INSERT INTO expenses (id, ledger_id, position, amount, expense_date, category_id, category_name, payer_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			ledger_id = EXCLUDED.ledger_id,
			position = EXCLUDED.position,
			amount = EXCLUDED.amount,
			expense_date = EXCLUDED.expense_date,
			category_id = EXCLUDED.category_id,
			category_name = EXCLUDED.category_name,
			payer_id = EXCLUDED.payer_id,
			description = EXCLUDED.description
	`

	expenses := ledger.Expenses()
	ids := make([]string, 0, len(expenses))
	for i, e := range expenses {
		if _, err := tx.ExecContext(ctx, upsert,
			e.ID,
			ledger.ID,
			i,
			e.Amount.StringFixed(2),
			e.Date,
			uuid.NullUUID{UUID: e.Category.ID, Valid: e.Category.ID != uuid.Nil},
			e.Category.Name,
			e.PayerID,
			e.Description,
		); err != nil {
			return fmt.Errorf("failed to save expense %s: %w", e.ID, err)
		}
		ids = append(ids, e.ID.String())
	}

	prune := `
		DELETE FROM expenses
		WHERE ledger_id = $1 AND NOT (id = ANY($2::uuid[]))
	`
	if _, err := tx.ExecContext(ctx, prune, ledger.ID, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to prune expenses: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger by its ID
func (r *ledgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SharedLedger, error) {
	return r.load(ctx, id)
}

// GetByExpenseID retrieves the ledger owning the given expense
func (r *ledgerRepository) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*domain.SharedLedger, error) {
	query := `SELECT ledger_id FROM expenses WHERE id = $1`

	var ledgerID uuid.UUID
	if err := r.db.QueryRowContext(ctx, query, expenseID).Scan(&ledgerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("expense %s: %w", expenseID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ledger by expense ID: %w", err)
	}

	return r.load(ctx, ledgerID)
}

// ListByParticipant retrieves every ledger the person is a member of, oldest first
func (r *ledgerRepository) ListByParticipant(ctx context.Context, personID uuid.UUID) ([]*domain.SharedLedger, error) {
	query := `
		SELECT l.id
		FROM ledgers l
		INNER JOIN ledger_participants lp ON lp.ledger_id = l.id
		WHERE lp.person_id = $1
		ORDER BY l.created_at ASC, l.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan ledger ID: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledgers: %w", err)
	}

	ledgers := make([]*domain.SharedLedger, 0, len(ids))
	for _, id := range ids {
		ledger, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, ledger)
	}

	return ledgers, nil
}

// load reads a ledger with its participants and expenses
func (r *ledgerRepository) load(ctx context.Context, id uuid.UUID) (*domain.SharedLedger, error) {
	query := `
		SELECT name, percentages_fixed
		FROM ledgers
		WHERE id = $1
	`

	var name string
	var percentagesFixed bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&name, &percentagesFixed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ledger by ID: %w", err)
	}

	participants, err := r.participants(ctx, id)
	if err != nil {
		return nil, err
	}

	expenses, err := r.expenses(ctx, id)
	if err != nil {
		return nil, err
	}

	ledger, err := domain.RestoreSharedLedger(id, name, percentagesFixed, participants, expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to restore ledger %s: %w", id, err)
	}
	return ledger, nil
}

func (r *ledgerRepository) participants(ctx context.Context, ledgerID uuid.UUID) ([]domain.Participant, error) {
	query := `
		SELECT p.id, p.full_name, p.username, lp.percentage, lp.balance
		FROM ledger_participants lp
		INNER JOIN persons p ON p.id = lp.person_id
		WHERE lp.ledger_id = $1
		ORDER BY lp.position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		var balanceStr string
		if err := rows.Scan(&p.Person.ID, &p.Person.FullName, &p.Person.Username, &p.Percentage, &balanceStr); err != nil {
			return nil, fmt.Errorf("failed to scan ledger participant: %w", err)
		}

		// Parse balance (NUMERIC)
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance: %w", err)
		}
		p.Balance = balance

		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger participants: %w", err)
	}

	return participants, nil
}

func (r *ledgerRepository) expenses(ctx context.Context, ledgerID uuid.UUID) ([]domain.Expense, error) {
	query := `
		SELECT id, amount, expense_date, category_id, category_name, payer_id, description
		FROM expenses
		WHERE ledger_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var amountStr string
		var categoryID uuid.NullUUID
		if err := rows.Scan(&e.ID, &amountStr, &e.Date, &categoryID, &e.Category.Name, &e.PayerID, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		// Parse amount (NUMERIC)
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		e.Amount = amount
		e.Date = domain.DateOf(e.Date)
		e.LedgerID = ledgerID
		if categoryID.Valid {
			e.Category.ID = categoryID.UUID
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gestiongastos/backend/internal/domain"
)

// alertRepository implements domain.AlertRepository.
// Only threshold strategies can be persisted.
type alertRepository struct {
	db *DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *DB) domain.AlertRepository {
	return &alertRepository{db: db}
}

// Create creates a new alert with its history
func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	threshold, err := thresholdOf(alert)
	if err != nil {
		return err
	}

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO alerts (id, owner_id, name, periodicity, category_id, category_name, strategy_kind, threshold, history_limit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		categoryID, categoryName := categoryColumns(alert.Category)
		if _, err := tx.ExecContext(ctx, query,
			alert.ID,
			alert.OwnerID,
			alert.Name,
			string(alert.Periodicity),
			categoryID,
			categoryName,
			string(alert.Strategy.Kind()),
			threshold,
			alert.HistoryLimit,
		); err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}

		return saveHistory(ctx, tx, alert)
	})
}

// Save updates an alert and replaces its notification history
func (r *alertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	threshold, err := thresholdOf(alert)
	if err != nil {
		return err
	}

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE alerts
			SET name = $2, periodicity = $3, category_id = $4, category_name = $5,
				strategy_kind = $6, threshold = $7, history_limit = $8
			WHERE id = $1
		`
		categoryID, categoryName := categoryColumns(alert.Category)
		result, err := tx.ExecContext(ctx, query,
			alert.ID,
			alert.Name,
			string(alert.Periodicity),
			categoryID,
			categoryName,
			string(alert.Strategy.Kind()),
			threshold,
			alert.HistoryLimit,
		)
		if err != nil {
			return fmt.Errorf("failed to update alert: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("alert %s: %w", alert.ID, domain.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE alert_id = $1`, alert.ID); err != nil {
			return fmt.Errorf("failed to clear notifications: %w", err)
		}
		return saveHistory(ctx, tx, alert)
	})
}

func saveHistory(ctx context.Context, tx *sql.Tx, alert *domain.Alert) error {
	query := `
		INSERT INTO notifications (id, alert_id, position, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, n := range alert.History() {
		if _, err := tx.ExecContext(ctx, query, n.ID, alert.ID, i, n.Message, n.Timestamp); err != nil {
			return fmt.Errorf("failed to save notification: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an alert by its ID
func (r *alertRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	query := `
		SELECT id, owner_id, name, periodicity, category_id, category_name, strategy_kind, threshold, history_limit
		FROM alerts
		WHERE id = $1
	`

	alert, err := r.scanAlert(ctx, r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get alert by ID: %w", err)
	}

	return alert, nil
}

// ListByOwner retrieves every alert owned by the person, oldest first
func (r *alertRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Alert, error) {
	query := `SELECT id FROM alerts WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan alert ID: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	alerts := make([]*domain.Alert, 0, len(ids))
	for _, id := range ids {
		alert, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// Delete removes an alert; its notifications cascade
func (r *alertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *alertRepository) scanAlert(ctx context.Context, row *sql.Row) (*domain.Alert, error) {
	var params domain.AlertParams
	var periodicity, kind string
	var categoryID uuid.NullUUID
	var categoryName, thresholdStr sql.NullString

	if err := row.Scan(
		&params.ID,
		&params.OwnerID,
		&params.Name,
		&periodicity,
		&categoryID,
		&categoryName,
		&kind,
		&thresholdStr,
		&params.HistoryLimit,
	); err != nil {
		return nil, err
	}
	params.Periodicity = domain.Periodicity(periodicity)

	if categoryName.Valid {
		params.Category = &domain.Category{Name: categoryName.String}
		if categoryID.Valid {
			params.Category.ID = categoryID.UUID
		}
	}

	if domain.StrategyKind(kind) != domain.StrategyKindThreshold || !thresholdStr.Valid {
		return nil, fmt.Errorf("unsupported strategy %q for alert %s", kind, params.ID)
	}
	threshold, err := decimal.NewFromString(thresholdStr.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse threshold: %w", err)
	}
	params.Strategy = domain.ThresholdStrategy{Threshold: threshold}

	history, err := r.history(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	return domain.RestoreAlert(params, history)
}

func (r *alertRepository) history(ctx context.Context, alertID uuid.UUID) ([]domain.Notification, error) {
	query := `
		SELECT id, message, created_at
		FROM notifications
		WHERE alert_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var history []domain.Notification
	for rows.Next() {
		n := domain.Notification{AlertID: alertID}
		if err := rows.Scan(&n.ID, &n.Message, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		history = append(history, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return history, nil
}

// thresholdOf returns the threshold column value of a persistable strategy
func thresholdOf(alert *domain.Alert) (string, error) {
	s, ok := alert.Strategy.(domain.ThresholdStrategy)
	if !ok {
		return "", fmt.Errorf("cannot persist %s strategy of alert %s", alert.Strategy.Kind(), alert.ID)
	}
	return s.Threshold.StringFixed(2), nil
}

func categoryColumns(c *domain.Category) (uuid.NullUUID, sql.NullString) {
	if c == nil {
		return uuid.NullUUID{}, sql.NullString{}
	}
	return uuid.NullUUID{UUID: c.ID, Valid: c.ID != uuid.Nil}, sql.NullString{String: c.Name, Valid: true}
}

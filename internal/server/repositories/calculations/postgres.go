// Package calculations provides a PostgreSQL-backed repository for stored
// calculations. Operand lists are persisted as JSONB.
package calculations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/common"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/dbx"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/models"
)

// PostgresRepository implements calculation storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a calculation and returns it with DB-assigned fields populated.
func (r *PostgresRepository) Create(ctx context.Context, calculation *models.Calculation) (*models.Calculation, error) {
	operands, err := json.Marshal(calculation.Operands)
	if err != nil {
		return nil, fmt.Errorf("operands marshal error: %w", err)
	}

	query := `
		INSERT INTO calculations (user_id, type, operands, result)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		calculation.UserID, calculation.Type, operands, calculation.Result).
		Scan(&calculation.ID, &calculation.CreatedAt, &calculation.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return calculation, nil
}

// GetByID returns the calculation with the given id if it belongs to userID,
// or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Calculation, error) {
	query := `
		SELECT id, user_id, type, operands, result, created_at, updated_at
		FROM calculations
		WHERE id = $1 AND user_id = $2
	`
	calculation := &models.Calculation{}
	var operands []byte
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&calculation.ID, &calculation.UserID, &calculation.Type, &operands,
			&calculation.Result, &calculation.CreatedAt, &calculation.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(operands, &calculation.Operands); err != nil {
		return nil, fmt.Errorf("operands unmarshal error: %w", err)
	}

	return calculation, nil
}

// ListByUser returns all of userID's calculations, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Calculation, error) {
	query := `
		SELECT id, user_id, type, operands, result, created_at, updated_at
		FROM calculations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Calculation
	for rows.Next() {
		var item models.Calculation
		var operands []byte
		if err := rows.Scan(&item.ID, &item.UserID, &item.Type, &operands,
			&item.Result, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(operands, &item.Operands); err != nil {
			return nil, fmt.Errorf("operands unmarshal error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites type, operands and result of an owned calculation and
// returns the updated row. Foreign or absent rows yield common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, calculation *models.Calculation) (*models.Calculation, error) {
	operands, err := json.Marshal(calculation.Operands)
	if err != nil {
		return nil, fmt.Errorf("operands marshal error: %w", err)
	}

	query := `
		UPDATE calculations
		SET type = $1, operands = $2, result = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at
	`
	err = r.db.QueryRowContext(ctx, query,
		calculation.Type, operands, calculation.Result, calculation.ID, calculation.UserID).
		Scan(&calculation.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return calculation, nil
}

// Delete removes an owned calculation. Foreign or absent rows yield
// common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM calculations WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

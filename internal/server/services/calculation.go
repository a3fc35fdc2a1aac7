package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/calc"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/common"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/models"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/repomanager"
)

// UpdateCalculationParams carries optional calculation fields; nil means
// "leave as is". Changing either field causes the result to be recomputed.
type UpdateCalculationParams struct {
	Type     *string
	Operands []float64
}

// CalculationService evaluates arithmetic operations and persists them
// per user. Every operation is scoped by the owner's id; a calculation
// belonging to another user behaves as absent.
type CalculationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCalculationService(db *sql.DB, m repomanager.RepositoryManager) *CalculationService {
	return &CalculationService{db: db, repomanager: m}
}

// Create evaluates the operation over the operands and stores the outcome.
// Evaluation errors (unknown operation, too few operands, division or
// modulus by zero) are returned as-is for the transport layer to map.
func (s *CalculationService) Create(ctx context.Context, userID, opType string, operands []float64) (*models.Calculation, error) {
	op := calc.Operation(opType)
	result, err := calc.Compute(op, operands)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Calculations(s.db)
	c, err := repo.Create(ctx, &models.Calculation{
		UserID:   userID,
		Type:     string(op),
		Operands: operands,
		Result:   result,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating calculation: %v", err)
	}
	return c, nil
}

// Get returns the calculation with the given id if it belongs to userID.
func (s *CalculationService) Get(ctx context.Context, userID, id string) (*models.Calculation, error) {
	repo := s.repomanager.Calculations(s.db)
	return repo.GetByID(ctx, userID, id)
}

// List returns the user's calculations, newest first.
func (s *CalculationService) List(ctx context.Context, userID string) ([]*models.Calculation, error) {
	repo := s.repomanager.Calculations(s.db)
	return repo.ListByUser(ctx, userID)
}

// Update modifies the operation type and/or operands of an existing
// calculation and recomputes its result.
func (s *CalculationService) Update(ctx context.Context, userID, id string, params UpdateCalculationParams) (*models.Calculation, error) {
	if params.Type == nil && params.Operands == nil {
		return nil, common.ErrorNoFields
	}

	repo := s.repomanager.Calculations(s.db)
	c, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		c.Type = *params.Type
	}
	if params.Operands != nil {
		c.Operands = params.Operands
	}

	result, err := calc.Compute(calc.Operation(c.Type), c.Operands)
	if err != nil {
		return nil, err
	}
	c.Result = result

	updated, err := repo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating calculation: %v", err)
	}
	return updated, nil
}

// Delete removes the calculation with the given id if it belongs to userID.
func (s *CalculationService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Calculations(s.db)
	return repo.Delete(ctx, userID, id)
}

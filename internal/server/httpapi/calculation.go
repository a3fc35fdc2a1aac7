package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/calc"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/models"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/services"
)

type createCalculationRequest struct {
	Type   string    `json:"type"`
	Inputs []float64 `json:"inputs"`
}

type updateCalculationRequest struct {
	Type   *string   `json:"type"`
	Inputs []float64 `json:"inputs"`
}

func (a *API) handleCreateCalculation(w http.ResponseWriter, r *http.Request) error {
	var req createCalculationRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Type == "" {
		return ErrUnprocessableEntity("type is required")
	}
	if !calc.Operation(req.Type).Valid() {
		return ErrUnprocessableEntity(calc.ErrUnknownOperation.Error())
	}
	if req.Inputs == nil {
		return ErrUnprocessableEntity("inputs are required")
	}

	claims := claimsFromContext(r.Context())
	c, err := a.calculations.Create(r.Context(), claims.UserID, req.Type, req.Inputs)
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusCreated, c)
	return nil
}

func (a *API) handleListCalculations(w http.ResponseWriter, r *http.Request) error {
	claims := claimsFromContext(r.Context())

	list, err := a.calculations.List(r.Context(), claims.UserID)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*models.Calculation{}
	}

	RespondWithJSON(w, http.StatusOK, list)
	return nil
}

func (a *API) handleGetCalculation(w http.ResponseWriter, r *http.Request) error {
	claims := claimsFromContext(r.Context())

	c, err := a.calculations.Get(r.Context(), claims.UserID, chi.URLParam(r, paramID))
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, c)
	return nil
}

func (a *API) handleUpdateCalculation(w http.ResponseWriter, r *http.Request) error {
	var req updateCalculationRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Type != nil && !calc.Operation(*req.Type).Valid() {
		return ErrUnprocessableEntity(calc.ErrUnknownOperation.Error())
	}

	claims := claimsFromContext(r.Context())
	c, err := a.calculations.Update(r.Context(), claims.UserID, chi.URLParam(r, paramID), services.UpdateCalculationParams{
		Type:     req.Type,
		Operands: req.Inputs,
	})
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, c)
	return nil
}

func (a *API) handleDeleteCalculation(w http.ResponseWriter, r *http.Request) error {
	claims := claimsFromContext(r.Context())

	if err := a.calculations.Delete(r.Context(), claims.UserID, chi.URLParam(r, paramID)); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *API) handleExportCalculations(w http.ResponseWriter, r *http.Request) error {
	claims := claimsFromContext(r.Context())

	url, err := a.export.Export(r.Context(), claims.UserID)
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"url": url})
	return nil
}

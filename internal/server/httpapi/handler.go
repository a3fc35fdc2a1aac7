// Package httpapi exposes the service over a REST API built on chi.
// Handlers return errors; a shared adapter maps service-level sentinel
// errors to HTTP status codes and a uniform JSON error body.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/calc"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/common"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/logging"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/services"
)

// API wires handlers, services, and the logger together.
type API struct {
	users        *services.UserService
	calculations *services.CalculationService
	export       *services.ExportService
	logger       logging.Logger
}

func New(users *services.UserService, calculations *services.CalculationService, export *services.ExportService, logger logging.Logger) *API {
	return &API{
		users:        users,
		calculations: calculations,
		export:       export,
		logger:       logger,
	}
}

// appHandler is a handler function that returns an error instead of
// writing error responses itself.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// makeHandler adapts an appHandler to http.HandlerFunc. Returned errors
// are translated to HTTP status codes and logged.
func (a *API) makeHandler(handler appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			return
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			httpErr = mapServiceError(err)
		}

		if httpErr.Code >= 500 {
			a.logger.Error(r.Context(), "request failed",
				"code", httpErr.Code, "path", r.URL.Path, "method", r.Method, "error", err)
		} else {
			a.logger.Warn(r.Context(), "client error response",
				"code", httpErr.Code, "msg", httpErr.Message, "path", r.URL.Path, "method", r.Method)
		}

		RespondWithError(w, httpErr.Code, httpErr.Message)
	}
}

// mapServiceError translates service and evaluation sentinels into HTTP
// errors. Anything unrecognized becomes a 500 with a generic message.
func mapServiceError(err error) *HTTPError {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return ErrNotFound("")

	case errors.Is(err, common.ErrorAlreadyExists):
		return ErrBadRequest("username or email already exists")

	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return ErrUnauthorized(err.Error())

	case errors.Is(err, common.ErrorNoFields),
		errors.Is(err, common.ErrorWrongPassword),
		errors.Is(err, calc.ErrDivisionByZero),
		errors.Is(err, calc.ErrModulusByZero):
		return ErrBadRequest(err.Error())

	case errors.Is(err, common.ErrorPasswordTooShort),
		errors.Is(err, common.ErrorSamePassword),
		errors.Is(err, calc.ErrUnknownOperation),
		errors.Is(err, calc.ErrNotEnoughOperands):
		return ErrUnprocessableEntity(err.Error())

	default:
		return ErrInternalServerWrap(err)
	}
}

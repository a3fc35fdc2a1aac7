package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const paramID = "id"

// Routes builds the complete route tree.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", handleHealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", a.makeHandler(a.handleRegister))
		r.Post("/login", a.makeHandler(a.handleLogin))
		r.Post("/token", a.makeHandler(a.handleRefreshToken))

		r.Group(func(r chi.Router) {
			r.Use(a.authenticate)
			r.Post("/logout", a.makeHandler(a.handleLogout))
		})
	})

	r.Route("/users/me", func(r chi.Router) {
		r.Use(a.authenticate)
		r.Get("/", a.makeHandler(a.handleGetProfile))
		r.Put("/", a.makeHandler(a.handleUpdateProfile))
		r.Delete("/", a.makeHandler(a.handleDeleteAccount))
		r.Post("/change-password", a.makeHandler(a.handleChangePassword))
	})

	r.Route("/calculations", func(r chi.Router) {
		r.Use(a.authenticate)
		r.Get("/", a.makeHandler(a.handleListCalculations))
		r.Post("/", a.makeHandler(a.handleCreateCalculation))
		r.Post("/export", a.makeHandler(a.handleExportCalculations))

		r.Route("/{"+paramID+"}", func(r chi.Router) {
			r.Get("/", a.makeHandler(a.handleGetCalculation))
			r.Put("/", a.makeHandler(a.handleUpdateCalculation))
			r.Delete("/", a.makeHandler(a.handleDeleteCalculation))
		})
	})

	return r
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerContentType, "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

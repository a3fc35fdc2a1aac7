package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/services"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResponse(pair *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return ErrBadRequest("invalid request payload: " + err.Error())
	}
	return nil
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	if req.Username == "" {
		return ErrUnprocessableEntity("username is required")
	}
	if req.Email == "" {
		return ErrUnprocessableEntity("email is required")
	}
	if req.Password == "" {
		return ErrUnprocessableEntity("password is required")
	}

	user, err := a.users.Register(r.Context(), services.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusCreated, user)
	return nil
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	pair, err := a.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, newTokenResponse(pair))
	return nil
}

func (a *API) handleRefreshToken(w http.ResponseWriter, r *http.Request) error {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return ErrUnprocessableEntity("refresh_token is required")
	}

	pair, err := a.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, newTokenResponse(pair))
	return nil
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) error {
	// body is optional; with no refresh token only the access token is revoked
	var req logoutRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return ErrBadRequest("invalid request payload: " + err.Error())
	}

	claims := claimsFromContext(r.Context())
	if err := a.users.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	return nil
}

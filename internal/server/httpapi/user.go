package httpapi

import (
	"net/http"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/services"
)

type updateProfileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) error {
	claims := claimsFromContext(r.Context())

	user, err := a.users.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, user)
	return nil
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) error {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	claims := claimsFromContext(r.Context())
	user, err := a.users.UpdateProfile(r.Context(), claims.UserID, services.UpdateProfileParams{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, user)
	return nil
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) error {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" {
		return ErrUnprocessableEntity("current_password is required")
	}
	if req.NewPassword == "" {
		return ErrUnprocessableEntity("new_password is required")
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return ErrUnprocessableEntity("new passwords do not match")
	}

	claims := claimsFromContext(r.Context())
	if err := a.users.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
	return nil
}

func (a *API) handleDeleteAccount(w http.ResponseWriter, r *http.Request) error {
	claims := claimsFromContext(r.Context())

	if err := a.users.DeleteAccount(r.Context(), claims.UserID); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

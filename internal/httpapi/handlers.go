// Package httpapi exposes the authentication service over HTTP. Handlers
// decode the request, call one service method, and hand any error to the
// boundary translator; they contain no domain logic of their own.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/logging"
	"github.com/gatehouse-io/gatehouse/internal/models"
)

// Handlers binds the authentication service to its HTTP routes.
type Handlers struct {
	service *auth.Service
	log     logging.Logger
}

func NewHandlers(service *auth.Service, log logging.Logger) *Handlers {
	if log == nil {
		log = logging.Nop{}
	}
	return &Handlers{service: service, log: log}
}

type loginRequest struct {
	Email    string `json:"user_email"`
	Password string `json:"user_password"`
}

type loginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, h.log, apperr.ErrInvalidCredentials)
		return
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(r.Context(), w, h.log, apperr.ErrRefreshTokenNotFound)
		return
	}
	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
	})
}

type logoutRequest struct {
	UserID string `json:"user_id"`
}

// Logout revokes every durable session of the named user. Admin only.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(r.Context(), w, h.log, apperr.ErrBadRequest)
		return
	}
	if err := h.service.Logout(r.Context(), req.UserID); err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogoutSelf revokes the caller's own durable sessions.
func (h *Handlers) LogoutSelf(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, h.log, apperr.ErrAccessDeniedNotLogged)
		return
	}
	if err := h.service.LogoutSelf(r.Context(), id); err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type forgotPasswordRequest struct {
	Email string `json:"user_email"`
}

// ForgotPassword always answers 204: whether the email exists is not
// observable through this endpoint.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.service.RequestReset(r.Context(), req.Email); err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResetToken == "" {
		writeError(r.Context(), w, h.log, apperr.ErrResetTokenNotFound)
		return
	}
	if err := h.service.ConfirmReset(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		writeError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

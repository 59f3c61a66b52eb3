package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/http/respond"
	"github.com/hongminglow/santuario-be/internal/metrics"
	"github.com/hongminglow/santuario-be/internal/models/dto"
	"github.com/hongminglow/santuario-be/internal/service"
)

// SessionOptions controls the session cookie written on login.
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// AuthHandler owns the register, login, logout and profile endpoints.
type AuthHandler struct {
	accounts *service.Accounts
	session  SessionOptions
	metrics  *metrics.Metrics
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *service.Accounts, session SessionOptions, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{accounts: accounts, session: session, metrics: m}
}

// Register attaches auth routes to the mux. requireAuth wraps the routes that need a session.
func (h *AuthHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.Handle("GET /api/auth/profile", requireAuth(http.HandlerFunc(h.handleProfile)))
	mux.Handle("PUT /api/auth/update-profile", requireAuth(http.HandlerFunc(h.handleUpdateProfile)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	created, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordRegistration(created.Role)
	zerolog.Ctx(r.Context()).Info().Int64("user_id", int64(created.ID)).Str("role", created.Role).Msg("user registered")
	created.Description = created.DisplayDescription()
	respond.JSON(w, r, http.StatusCreated, dto.RegisterResponse{OK: true, User: created})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	user, token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		recordLoginFailure(h.metrics, err)
		writeError(w, r, err)
		return
	}
	h.metrics.RecordLogin(metrics.LoginSuccess)
	http.SetCookie(w, auth.SessionCookie(token, h.session.TTL, h.session.Secure))
	respond.JSON(w, r, http.StatusOK, dto.LoginResponse{OK: true, User: dto.NewSessionUser(user), Token: token})
}

// recordLoginFailure counts rejected credentials and bad input as failures,
// anything else as an error.
func recordLoginFailure(m *metrics.Metrics, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.As(err, &verr):
		m.RecordLogin(metrics.LoginFailure)
	default:
		m.RecordLogin(metrics.LoginError)
	}
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ExpiredSessionCookie(h.session.Secure))
	respond.JSON(w, r, http.StatusOK, dto.OKResponse{OK: true, Message: "Sesión cerrada"})
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	supplied, err := queryID(r, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	identity, err := actingUser(r, supplied)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.accounts.Profile(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user.Description = user.DisplayDescription()
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	identity, err := actingUser(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var description string
	if req.Description != nil {
		description = *req.Description
	} else {
		current, err := h.accounts.Profile(r.Context(), identity.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		description = current.Description
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), identity.UserID, req.Name, req.Email, description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated.Description = updated.DisplayDescription()
	respond.JSON(w, r, http.StatusOK, dto.ProfileResponse{
		OK:      true,
		Message: "Perfil actualizado correctamente",
		User:    updated,
	})
}

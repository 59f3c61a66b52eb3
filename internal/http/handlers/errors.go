package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/http/respond"
	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/service"
	"github.com/hongminglow/santuario-be/internal/storage"
)

const maxBodyBytes = 1 << 20

// User-facing messages.
const (
	msgInvalidCredentials = "Usuario o contraseña incorrectos"
	msgEmailTaken         = "El correo ya está registrado"
	msgNotFound           = "Recurso no encontrado"
	msgForbidden          = "No tienes permiso sobre este recurso"
	msgServerError        = "Error en el servidor"
	msgInvalidJSON        = "invalid JSON payload"
)

// writeError maps service and storage errors onto HTTP statuses. Unknown errors
// are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	respond.Error(w, r, status, message)
}

func classify(err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict, msgEmailTaken
	}
	return http.StatusInternalServerError, msgServerError
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// actingUser returns the session identity and checks that an id supplied by the
// client, if any, names the same user.
func actingUser(r *http.Request, supplied models.ID) (auth.Identity, error) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, service.ErrForbidden
	}
	if supplied != 0 && supplied != identity.UserID {
		return auth.Identity{}, service.ErrForbidden
	}
	return identity, nil
}

// queryID parses an optional id query parameter; absent means zero.
func queryID(r *http.Request, key string) (models.ID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	id, err := models.ParseID(raw)
	if err != nil {
		return 0, &service.ValidationError{Message: key + " inválido"}
	}
	return id, nil
}

func pathID(r *http.Request) (models.ID, error) {
	id, err := models.ParseID(r.PathValue("id"))
	if err != nil {
		return 0, &service.ValidationError{Message: "ID de criatura inválido"}
	}
	return id, nil
}

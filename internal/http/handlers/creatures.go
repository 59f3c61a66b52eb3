package handlers

import (
	"net/http"

	"github.com/hongminglow/santuario-be/internal/http/respond"
	"github.com/hongminglow/santuario-be/internal/models"
	"github.com/hongminglow/santuario-be/internal/models/dto"
	"github.com/hongminglow/santuario-be/internal/service"
)

// CreatureHandler exposes the creature CRUD endpoints. Every route acts on behalf
// of the session user.
type CreatureHandler struct {
	creatures *service.Creatures
}

// NewCreatureHandler constructs the handler.
func NewCreatureHandler(creatures *service.Creatures) *CreatureHandler {
	return &CreatureHandler{creatures: creatures}
}

// Register attaches creature routes to the mux.
func (h *CreatureHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/species", h.handleSpecies)
	mux.Handle("GET /api/creatures", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /api/creatures/new", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /api/creatures/{id}", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /api/creatures/{id}", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /api/creatures/{id}", requireAuth(http.HandlerFunc(h.handleDelete)))
}

func (h *CreatureHandler) handleSpecies(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, dto.SpeciesResponse{OK: true, Species: models.Species})
}

func (h *CreatureHandler) handleList(w http.ResponseWriter, r *http.Request) {
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
	list, err := h.creatures.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.CreatureListResponse{OK: true, Creatures: list})
}

func (h *CreatureHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	identity, err := actingUser(r, req.UsuarioID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.creatures.Create(r.Context(), identity.UserID, creatureInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, dto.CreatureResponse{
		OK:       true,
		Message:  "Criatura creada correctamente",
		Creature: created,
	})
}

func (h *CreatureHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	identity, err := actingUser(r, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.creatures.Get(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.CreatureResponse{OK: true, Creature: c})
}

func (h *CreatureHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.CreatureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	identity, err := actingUser(r, req.UsuarioID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.creatures.Update(r.Context(), identity.UserID, id, creatureInput(req))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.CreatureResponse{
		OK:       true,
		Message:  "Criatura actualizada correctamente",
		Creature: updated,
	})
}

func (h *CreatureHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	supplied, err := queryID(r, "usuarioId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	identity, err := actingUser(r, supplied)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.creatures.Delete(r.Context(), identity.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, dto.OKResponse{OK: true, Message: "Criatura eliminada exitosamente"})
}

func creatureInput(req dto.CreatureRequest) service.CreatureInput {
	return service.CreatureInput{
		Name:       req.Nombre,
		Species:    req.Especie,
		MagicLevel: req.NivelMagico,
		Trained:    req.Entrenada,
		Skills:     req.Habilidades,
	}
}

package handlers

import (
	"SecretKeeper/internal/apperr"
	"SecretKeeper/internal/middleware"
	"SecretKeeper/internal/model"
	"SecretKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SecretHandler: HTTP-обёртка над SecretService.
type SecretHandler struct {
	SecretService *service.SecretService
	Logger        *zap.SugaredLogger
}

// NewSecretHandler создаёт хендлер секретов
func NewSecretHandler(secretService *service.SecretService, logger *zap.SugaredLogger) *SecretHandler {
	return &SecretHandler{SecretService: secretService, Logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError отдаёт статус по классу ошибки. Текст внутренних ошибок наружу не уходит.
func (h *SecretHandler) writeError(w http.ResponseWriter, op string, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	switch {
	case errors.Is(err, apperr.ErrWorkspaceSalt):
		msg = apperr.ErrWorkspaceSalt.Error()
	case status >= http.StatusInternalServerError:
		h.Logger.Errorw(op+": service error", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return false
	}
	return true
}

// Create POST /api/v1/secrets/{secretName}
func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req CreateSecretRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.SecretService.Create(r.Context(), service.CreateInput{
		SecretName:  chi.URLParam(r, "secretName"),
		WorkspaceID: req.WorkspaceID,
		Environment: req.Environment,
		Type:        req.Type,
		Actor:       actor,
		Payload: model.Payload{
			SecretKey:     req.SecretKey,
			SecretValue:   req.SecretValue,
			SecretComment: req.SecretComment,
		},
		FolderID: req.FolderID,
	})
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, secretResponse{Secret: toDTO(res.Secret)})
}

// List GET /api/v1/secrets?workspaceId=&environment=
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	q := r.URL.Query()

	res, err := h.SecretService.ReadMany(r.Context(), q.Get("workspaceId"), q.Get("environment"), actor)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	writeJSON(w, http.StatusOK, secretsResponse{Secrets: toDTOs(res.Secrets)})
}

// Get GET /api/v1/secrets/{secretName}?workspaceId=&environment=&type=
func (h *SecretHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	q := r.URL.Query()

	res, err := h.SecretService.ReadOne(r.Context(), service.ReadOneInput{
		SecretName:  chi.URLParam(r, "secretName"),
		WorkspaceID: q.Get("workspaceId"),
		Environment: q.Get("environment"),
		Type:        model.SecretType(q.Get("type")),
		Actor:       actor,
	})
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	writeJSON(w, http.StatusOK, secretResponse{Secret: toDTO(res.Secret)})
}

// Batch POST /api/v1/secrets/batch
func (h *SecretHandler) Batch(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req BatchReadRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.SecretService.ReadBatch(r.Context(), req.SecretNames, req.WorkspaceID, req.Environment, actor)
	if err != nil {
		h.writeError(w, "Batch", err)
		return
	}
	writeJSON(w, http.StatusOK, secretsResponse{Secrets: toDTOs(res.Secrets)})
}

// Update PATCH /api/v1/secrets/{secretName}
func (h *SecretHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req UpdateSecretRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.SecretService.Update(r.Context(), service.UpdateInput{
		SecretName:  chi.URLParam(r, "secretName"),
		WorkspaceID: req.WorkspaceID,
		Environment: req.Environment,
		Type:        req.Type,
		Actor:       actor,
		SecretValue: req.SecretValue,
	})
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	writeJSON(w, http.StatusOK, secretResponse{Secret: toDTO(res.Secret)})
}

// Delete DELETE /api/v1/secrets/{secretName}
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req DeleteSecretRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.SecretService.Delete(r.Context(), service.DeleteInput{
		SecretName:  chi.URLParam(r, "secretName"),
		WorkspaceID: req.WorkspaceID,
		Environment: req.Environment,
		Type:        req.Type,
		Actor:       actor,
	})
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Secret: toDTO(res.Secret), Deleted: toDTOs(res.Secrets)})
}

// Bootstrap POST /api/v1/workspaces/{workspaceID}/bootstrap
func (h *SecretHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	ws := chi.URLParam(r, "workspaceID")
	created, err := h.SecretService.BootstrapWorkspace(r.Context(), ws)
	if err != nil {
		h.writeError(w, "Bootstrap", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, bootstrapResponse{WorkspaceID: ws, Created: created})
}

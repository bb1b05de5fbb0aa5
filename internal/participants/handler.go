package participants

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/compasso-erp/compasso-erp/internal/platform/httpx"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Handler manages participant endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers participant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func scope(r *http.Request) (string, error) {
	companyID := shared.CompanyFromContext(r.Context())
	if companyID == "" {
		return "", fmt.Errorf("company scope header required: %w", shared.ErrInvalidInput)
	}
	return companyID, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list participants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req SaveParticipantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), companyID, req)
	if err != nil {
		h.logger.Error("create participant", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	companyID, err := scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req SaveParticipantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Update(r.Context(), companyID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	companyID, err := scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), companyID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

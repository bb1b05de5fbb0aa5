package salesrows

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/compasso-erp/compasso-erp/internal/platform/httpx"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Handler manages sale-row endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sale-row routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rows", h.list)
	r.Post("/rows", h.create)
	r.Get("/rows/pending-settlement", h.pendingSettlement)
	r.Get("/rows/{id}", h.show)
	r.Put("/rows/{id}", h.update)
	r.Delete("/rows/{id}", h.delete)
}

func (h *Handler) scope(r *http.Request) (string, error) {
	companyID := shared.CompanyFromContext(r.Context())
	if companyID == "" {
		return "", fmt.Errorf("company scope header required: %w", shared.ErrInvalidInput)
	}
	return companyID, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list sale rows", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) pendingSettlement(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.PendingForSettlement(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list pending settlement rows", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	row, err := h.service.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateSaleRowRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	row, err := h.service.Create(r.Context(), companyID, req)
	if err != nil {
		h.logger.Error("create sale row", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateSaleRowRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	row, err := h.service.Update(r.Context(), companyID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
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

package vouchers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/compasso-erp/compasso-erp/internal/platform/httpx"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Handler manages voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/balances", h.balances)
	r.Get("/clients/{client}", h.statement)
	r.Delete("/{id}", h.delete)
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
	movements, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list voucher movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateMovementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.AddMovement(r.Context(), companyID, req)
	if err != nil {
		h.logger.Error("add voucher movement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	movements, balance, err := h.service.Statement(r.Context(), companyID, chi.URLParam(r, "client"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"client":    chi.URLParam(r, "client"),
		"balance":   balance,
		"movements": movements,
	})
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	balances, err := h.service.Balances(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balances)
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

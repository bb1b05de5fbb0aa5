package settlement

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/compasso-erp/compasso-erp/internal/platform/httpx"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Handler manages settlement endpoints.
type Handler struct {
	logger   *slog.Logger
	engine   *Engine
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, engine: engine, validate: validator.New()}
}

// MountRoutes registers settlement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Post("/{id}/close", h.close)

	r.Get("/pending-expenses", h.listPendingExpenses)
	r.Post("/pending-expenses", h.savePendingExpense)
	r.Delete("/pending-expenses/{id}", h.deletePendingExpense)
}

func (h *Handler) scope(r *http.Request) (string, error) {
	companyID := shared.CompanyFromContext(r.Context())
	if companyID == "" {
		return "", fmt.Errorf("company scope header required: %w", shared.ErrInvalidInput)
	}
	return companyID, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateSettlementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.engine.Create(r.Context(), companyID, req.toInput())
	if err != nil {
		h.logger.Error("create settlement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	settlements, err := h.engine.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list settlements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settlements)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.engine.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.engine.Close(r.Context(), companyID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(StatusClosed)})
}

func (h *Handler) savePendingExpense(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req PendingExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	saved, err := h.engine.SavePendingExpense(r.Context(), companyID, req.toExpense())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) listPendingExpenses(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	expenses, err := h.engine.ListPendingExpenses(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expenses)
}

func (h *Handler) deletePendingExpense(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.engine.DeletePendingExpense(r.Context(), companyID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

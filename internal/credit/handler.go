package credit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/compasso-erp/compasso-erp/internal/platform/httpx"
	"github.com/compasso-erp/compasso-erp/internal/shared"
)

// Handler manages credit ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers credit ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/totals", h.totals)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/accrual", h.accrual)
	r.Post("/{id}/payments", h.addPayment)
	r.Delete("/{id}/payments/{paymentID}", h.removePayment)
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
	records, err := h.service.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list credit records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateCreditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Create(r.Context(), companyID, req)
	if err != nil {
		h.logger.Error("create credit record", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateCreditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Update(r.Context(), companyID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
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

func (h *Handler) accrual(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "as_of must be RFC 3339 or YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	rec, res, err := h.service.AccrueRecord(r.Context(), companyID, chi.URLParam(r, "id"), asOf)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	effective := asOf
	if effective.IsZero() {
		effective = time.Now().UTC()
	}
	httpx.JSON(w, http.StatusOK, AccrualResponse{Record: rec, AsOf: effective, Accrual: res})
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req AddPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.AddPayment(r.Context(), companyID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) removePayment(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.RemovePayment(r.Context(), companyID, chi.URLParam(r, "id"), chi.URLParam(r, "paymentID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	companyID, err := h.scope(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	totals, err := h.service.Totals(r.Context(), companyID)
	if err != nil {
		h.logger.Error("portfolio totals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

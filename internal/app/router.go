package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/compasso-erp/compasso-erp/internal/companies"
	"github.com/compasso-erp/compasso-erp/internal/credit"
	"github.com/compasso-erp/compasso-erp/internal/participants"
	"github.com/compasso-erp/compasso-erp/internal/platform/httpx"
	"github.com/compasso-erp/compasso-erp/internal/rates"
	"github.com/compasso-erp/compasso-erp/internal/salesrows"
	"github.com/compasso-erp/compasso-erp/internal/settlement"
	"github.com/compasso-erp/compasso-erp/internal/vouchers"
	"github.com/compasso-erp/compasso-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CompaniesHandler    *companies.Handler
	SalesRowsHandler    *salesrows.Handler
	ParticipantsHandler *participants.Handler
	SettlementHandler   *settlement.Handler
	CreditHandler       *credit.Handler
	VouchersHandler     *vouchers.Handler
	RatesHandler        *rates.Handler
	JobsHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with Compasso defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/companies", params.CompaniesHandler.MountRoutes)
		r.Route("/sales", params.SalesRowsHandler.MountRoutes)
		r.Route("/participants", params.ParticipantsHandler.MountRoutes)
		r.Route("/settlements", params.SettlementHandler.MountRoutes)
		r.Route("/credit", params.CreditHandler.MountRoutes)
		r.Route("/vouchers", params.VouchersHandler.MountRoutes)
		r.Route("/rates", params.RatesHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}

package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/compasso-erp/compasso-erp/internal/companies"
	"github.com/compasso-erp/compasso-erp/internal/credit"
)

// PortfolioSnapshotJob recomputes portfolio totals per company and warms the
// Redis cache so dashboard reads stay cheap between mutations.
type PortfolioSnapshotJob struct {
	credit    *credit.Service
	companies *companies.Service
	logger    *slog.Logger
}

// NewPortfolioSnapshotJob constructs the job.
func NewPortfolioSnapshotJob(creditService *credit.Service, companiesService *companies.Service, logger *slog.Logger) *PortfolioSnapshotJob {
	return &PortfolioSnapshotJob{credit: creditService, companies: companiesService, logger: logger}
}

// Handle processes TaskPortfolioSnapshot tasks.
func (j *PortfolioSnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PortfolioSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	var targets []string
	if payload.Scope != "" && payload.Scope != "active" {
		targets = []string{payload.Scope}
	} else {
		list, err := j.companies.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range list {
			if c.Active {
				targets = append(targets, c.ID)
			}
		}
	}

	for _, companyID := range targets {
		totals, err := j.credit.WarmTotals(ctx, companyID)
		if err != nil {
			j.logger.Warn("portfolio snapshot",
				slog.String("company_id", companyID), slog.Any("error", err))
			continue
		}
		j.logger.Info("portfolio snapshot",
			slog.String("company_id", companyID),
			slog.Float64("outstanding", totals.TotalOutstandingWithInterest))
	}
	return nil
}

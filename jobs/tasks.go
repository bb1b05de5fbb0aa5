package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPortfolioSnapshot recomputes credit portfolio totals and warms the
	// Redis cache for every active company.
	TaskPortfolioSnapshot = "credit:portfolio_snapshot"
)

// PortfolioSnapshotPayload selects which companies to snapshot. Scope is
// "active" or a single company id.
type PortfolioSnapshotPayload struct {
	Scope string `json:"scope"`
}

// NewPortfolioSnapshotTask constructs an Asynq task.
func NewPortfolioSnapshotTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(PortfolioSnapshotPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPortfolioSnapshot, data), nil
}

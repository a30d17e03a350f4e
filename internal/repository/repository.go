package repository

import (
	"context"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

const (
	TableDisasters = "disasters"
	TableResources = "resources"
	TableReports   = "reports"
)

type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// ChangeEvent describes one row mutation. New and Old are opaque row maps;
// consumers key off "id" and "disaster_id" only.
type ChangeEvent struct {
	Op    ChangeOp
	Table string
	New   map[string]any
	Old   map[string]any
}

// ChangeFeed delivers row-change notifications for a table. Callbacks run
// on dispatch workers, not on the mutating goroutine. The returned function
// unsubscribes.
type ChangeFeed interface {
	SubscribeChanges(table string, fn func(ChangeEvent)) (unsubscribe func())
}

type Filter struct {
	Status   models.DisasterStatus
	Severity models.DisasterSeverity
	Tag      string
	Limit    int
	Offset   int
}

type DisasterRepository interface {
	CreateDisaster(ctx context.Context, d *models.Disaster) error
	GetDisaster(ctx context.Context, id string) (*models.Disaster, error)
	ListDisasters(ctx context.Context, f Filter) ([]models.Disaster, error)
	UpdateDisaster(ctx context.Context, d *models.Disaster) error
	DeleteDisaster(ctx context.Context, id string) error
	ActiveDisasters(ctx context.Context) ([]models.Disaster, error)
}

type ResourceRepository interface {
	CreateResource(ctx context.Context, r *models.Resource) error
	ListResources(ctx context.Context, disasterID string) ([]models.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

type ReportRepository interface {
	CreateReport(ctx context.Context, r *models.Report) error
	ListReports(ctx context.Context, disasterID string) ([]models.Report, error)
	UpdateReportStatus(ctx context.Context, id string, status models.VerificationStatus) error
}

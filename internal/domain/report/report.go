package report

import (
	"context"
	"time"
)

// DailySnapshot holds one day's platform activity counters
type DailySnapshot struct {
	ReportDate        time.Time `json:"report_date"`
	LeadsCreated      int64     `json:"leads_created"`
	LeadsConverted    int64     `json:"leads_converted"`
	ClientsRegistered int64     `json:"clients_registered"`
	ReturnsFiled      int64     `json:"returns_filed"`
	DocumentsUploaded int64     `json:"documents_uploaded"`
	AppointmentsHeld  int64     `json:"appointments_held"`
}

// Repository defines the persistence port for daily reports
type Repository interface {
	// CollectDaily computes the snapshot for a calendar day from the
	// operational tables.
	CollectDaily(ctx context.Context, day time.Time) (*DailySnapshot, error)
	// UpsertDaily stores the snapshot, replacing any existing row for
	// the same day so reruns are idempotent.
	UpsertDaily(ctx context.Context, snapshot *DailySnapshot) error
	FindRange(ctx context.Context, from, to time.Time) ([]*DailySnapshot, error)
}

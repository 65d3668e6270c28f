package models

import (
	"time"
)

// DailyReportModel stores one day's pre-aggregated platform counters,
// written by the nightly report job.
type DailyReportModel struct {
	BaseModel
	ReportDate        time.Time `gorm:"type:date;not null;uniqueIndex"`
	LeadsCreated      int64     `gorm:"not null;default:0"`
	LeadsConverted    int64     `gorm:"not null;default:0"`
	ClientsRegistered int64     `gorm:"not null;default:0"`
	ReturnsFiled      int64     `gorm:"not null;default:0"`
	DocumentsUploaded int64     `gorm:"not null;default:0"`
	AppointmentsHeld  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DailyReportModel) TableName() string {
	return "daily_reports"
}

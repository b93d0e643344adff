package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the long-lived root: profile, roles and the recurring work
// schedule used by report headers.
type User struct {
	gorm.Model
	Name         string         `gorm:"size:128"`
	Email        string         `gorm:"uniqueIndex;size:255"`
	PasswordHash string         `gorm:"size:255"`
	PathToIcon   string         `gorm:"size:512"`
	Roles        datatypes.JSON // list of role/position strings
	WorkSchedule datatypes.JSON // list of SchedulePeriod

	Responsibilities []ResponsibilitiesSummary `gorm:"constraint:OnDelete:CASCADE"`
	Exports          []ReportExport            `gorm:"constraint:OnDelete:CASCADE"`
}

// SchedulePeriod is one recurring block of the work schedule, serialized
// into User.WorkSchedule.
type SchedulePeriod struct {
	StartDay        string `json:"start_day"`
	EndDay          string `json:"end_day"`
	ExpectedTimeIn  string `json:"expected_time_in"`
	ExpectedTimeOut string `json:"expected_time_out"`
}

// Day is the aggregate root for one calendar date. At most one row per date;
// deleting it cascades to the owned activity rows.
type Day struct {
	gorm.Model
	Date    string  `gorm:"uniqueIndex;size:10"` // YYYY-MM-DD
	TimeIn  *string `gorm:"size:8"`              // HH:MM:SS
	TimeOut *string `gorm:"size:8"`

	Activities        []Activity        `gorm:"constraint:OnDelete:CASCADE"`
	SpecialActivities []SpecialActivity `gorm:"constraint:OnDelete:CASCADE"`
}

// Activity is one logged task within a day.
type Activity struct {
	gorm.Model
	Content   string  `gorm:"not null"`
	Category  *string `gorm:"size:128"`
	TimeStart *string `gorm:"size:8"`
	TimeEnd   *string `gorm:"size:8"`
	DayID     uint    `gorm:"index"`
}

// SpecialActivity has the same shape as Activity but is rendered as a
// distinguished sub-block in reports.
type SpecialActivity struct {
	gorm.Model
	Content   string  `gorm:"not null"`
	Category  *string `gorm:"size:128"`
	TimeStart *string `gorm:"size:8"`
	TimeEnd   *string `gorm:"size:8"`
	DayID     uint    `gorm:"index"`
}

// ResponsibilitiesSummary is the free-text responsibilities block attached
// to a user, reused across report exports.
type ResponsibilitiesSummary struct {
	gorm.Model
	Content string
	UserID  uint `gorm:"index"`
}

// LogTemplate is an immutable named snapshot of a day's editable state,
// used to pre-fill future days.
type LogTemplate struct {
	gorm.Model
	Name        string `gorm:"size:128;not null"`
	Description *string
	ColorCode   string         `gorm:"size:16"`
	Content     datatypes.JSON // versioned day snapshot, see internal/template
}

// ExportTemplate mirrors LogTemplate for the export wizard's saved setups.
type ExportTemplate struct {
	gorm.Model
	Name        string `gorm:"size:128;not null"`
	Description *string
	ColorCode   string `gorm:"size:16"`
	Content     datatypes.JSON
}

// Export lifecycle states for ReportExport.Status.
const (
	ExportStatusPending   = "pending"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// ReportExport tracks one requested report file from enqueue to completion.
type ReportExport struct {
	gorm.Model
	UserID         uint   `gorm:"index"`
	Title          string `gorm:"size:255"`
	PeriodStart    string `gorm:"size:10"`
	PeriodEnd      string `gorm:"size:10"`
	OutputFormat   string `gorm:"size:16"` // pdf | word | excel
	DocumentFormat string `gorm:"size:16"` // professional | monotone | simple | creative
	FileName       string `gorm:"size:255"`
	ObjectKey      string `gorm:"size:512"`
	Status         string `gorm:"size:16;default:pending"`
	ErrorMessage   string `gorm:"size:1024"`
	Options        datatypes.JSON // report.Options + user-entered sections, kept for re-runs
}

package report

import "daylog/internal/database"

// Options gates which sections make it into the document. A section is
// included only when its flag is set AND the underlying data is non-empty.
type Options struct {
	IncludeRoles            bool `json:"include_roles"`
	IncludeSchedule         bool `json:"include_schedule"`
	IncludeResponsibilities bool `json:"include_responsibilities"`
	IncludeContributions    bool `json:"include_contributions"`
	IncludeDailyLog         bool `json:"include_daily_log"`
	IncludeConclusions      bool `json:"include_conclusions"`
	// SaveResponsibilities persists a newly supplied responsibilities
	// summary for reuse, unless the user already has one.
	SaveResponsibilities bool `json:"save_responsibilities"`
}

// Contribution is one user-entered key-contribution pair, supplied per
// export and not persisted elsewhere.
type Contribution struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sections carries the free-text material the user types into the export
// wizard alongside the date range.
type Sections struct {
	Title            string         `json:"title"`
	Responsibilities string         `json:"responsibilities"`
	Contributions    []Contribution `json:"contributions"`
	Conclusions      string         `json:"conclusions"`
}

// DayDetail is one per-day block of the daily log.
type DayDetail struct {
	Date              string                     `json:"date"`
	TimeIn            *string                    `json:"time_in"`
	TimeOut           *string                    `json:"time_out"`
	Activities        []database.Activity        `json:"activities"`
	SpecialActivities []database.SpecialActivity `json:"special_activities"`
}

// Document is the transient in-memory report assembled from a date range.
// It is built fresh per export request and discarded after rendering; only
// fields left non-zero by the aggregator are rendered.
type Document struct {
	Title            string
	UserName         string
	Role             string
	PeriodLabel      string
	PeriodStart      string
	PeriodEnd        string
	Roles            []string
	WorkSchedule     []database.SchedulePeriod
	Responsibilities string
	Contributions    []Contribution
	DailyLog         []DayDetail
	Conclusions      string
}

// HasDailyLog reports whether the document carries any day blocks.
func (d *Document) HasDailyLog() bool { return len(d.DailyLog) > 0 }

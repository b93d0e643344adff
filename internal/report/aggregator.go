package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/daylog"
)

var (
	// ErrUserNotFound aborts aggregation before any day is read.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRange is returned when the range is malformed or reversed.
	ErrInvalidRange = errors.New("invalid date range")
)

// Builder assembles report documents from the store. Per-day read failures
// are logged and skipped; only a missing user aborts the build.
type Builder struct {
	db     *gorm.DB
	days   *daylog.Service
	logger *slog.Logger
}

func NewBuilder(db *gorm.DB, days *daylog.Service, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{db: db, days: days, logger: logger}
}

// Build resolves the user, optionally persists a new responsibilities
// summary, expands the date range, and collects every existing Day into a
// Document. Sections are included only when their flag is set and the data
// is non-empty.
func (b *Builder) Build(ctx context.Context, userID uint, start, end string, opts Options, sections Sections) (*Document, error) {
	dates, err := DatesInRange(start, end)
	if err != nil {
		return nil, err
	}

	var user database.User
	if err := b.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	responsibilities := sections.Responsibilities
	if responsibilities == "" {
		responsibilities = b.storedResponsibilities(ctx, user.ID)
	} else if opts.SaveResponsibilities {
		b.persistResponsibilities(ctx, user.ID, responsibilities)
	}

	doc := &Document{
		Title:       sections.Title,
		UserName:    user.Name,
		PeriodStart: start,
		PeriodEnd:   end,
		PeriodLabel: periodLabel(start, end),
	}
	if doc.Title == "" {
		doc.Title = "Activity Report"
	}

	roles := decodeRoles(user.Roles)
	if opts.IncludeRoles && len(roles) > 0 {
		doc.Roles = roles
		doc.Role = roles[0]
	}
	if opts.IncludeSchedule {
		doc.WorkSchedule = decodeSchedule(user.WorkSchedule)
	}
	if opts.IncludeResponsibilities && responsibilities != "" {
		doc.Responsibilities = responsibilities
	}
	if opts.IncludeContributions && len(sections.Contributions) > 0 {
		doc.Contributions = sections.Contributions
	}
	if opts.IncludeConclusions && sections.Conclusions != "" {
		doc.Conclusions = sections.Conclusions
	}

	if opts.IncludeDailyLog {
		for _, date := range dates {
			day, err := b.days.GetByDate(ctx, date)
			if err != nil {
				if errors.Is(err, daylog.ErrDayNotFound) {
					continue // no placeholder for unlogged dates
				}
				b.logger.Warn("skipping unreadable day",
					slog.String("date", date),
					slog.Any("error", err),
				)
				continue
			}
			doc.DailyLog = append(doc.DailyLog, DayDetail{
				Date:              day.Date,
				TimeIn:            day.TimeIn,
				TimeOut:           day.TimeOut,
				Activities:        day.Activities,
				SpecialActivities: day.SpecialActivities,
			})
		}
	}

	return doc, nil
}

func (b *Builder) storedResponsibilities(ctx context.Context, userID uint) string {
	var row database.ResponsibilitiesSummary
	err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return ""
	}
	return row.Content
}

// persistResponsibilities stores the supplied summary only when the user
// has none yet; an existing summary is never overwritten by an export.
func (b *Builder) persistResponsibilities(ctx context.Context, userID uint, content string) {
	var count int64
	if err := b.db.WithContext(ctx).
		Model(&database.ResponsibilitiesSummary{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		b.logger.Warn("count responsibilities failed", slog.Any("error", err))
		return
	}
	if count > 0 {
		return
	}
	row := database.ResponsibilitiesSummary{UserID: userID, Content: content}
	if err := b.db.WithContext(ctx).Create(&row).Error; err != nil {
		b.logger.Warn("persist responsibilities failed", slog.Any("error", err))
	}
}

// DatesInRange expands [start, end] into every calendar date inclusive.
// start == end yields exactly one date; a reversed range is an error.
func DatesInRange(start, end string) ([]string, error) {
	from, err := time.Parse(daylog.DateLayout, start)
	if err != nil {
		return nil, ErrInvalidRange
	}
	to, err := time.Parse(daylog.DateLayout, end)
	if err != nil {
		return nil, ErrInvalidRange
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(daylog.DateLayout))
	}
	return dates, nil
}

func periodLabel(start, end string) string {
	from, err1 := time.Parse(daylog.DateLayout, start)
	to, err2 := time.Parse(daylog.DateLayout, end)
	if err1 != nil || err2 != nil {
		return start + " to " + end
	}
	if start == end {
		return from.Format("January 2, 2006")
	}
	return from.Format("January 2, 2006") + " to " + to.Format("January 2, 2006")
}

func decodeRoles(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil
	}
	out := roles[:0]
	for _, r := range roles {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

func decodeSchedule(raw []byte) []database.SchedulePeriod {
	if len(raw) == 0 {
		return nil
	}
	var schedule []database.SchedulePeriod
	if err := json.Unmarshal(raw, &schedule); err != nil {
		return nil
	}
	return schedule
}

package daylog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"daylog/internal/database"
)

// Wire formats for dates and clock times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var (
	// ErrEmptyContent is returned before any write when an activity has no content.
	ErrEmptyContent = errors.New("activity content must not be empty")
	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidTime is returned for clock times not in HH:MM:SS form.
	ErrInvalidTime = errors.New("invalid time, expected HH:MM:SS")
	// ErrDayNotFound is returned when no Day row exists for a date.
	ErrDayNotFound = errors.New("day not found")
)

// ActivityInput is one desired activity row. A zero ID means insert; a
// non-zero ID means update in place.
type ActivityInput struct {
	ID        uint    `json:"id"`
	Content   string  `json:"content"`
	Category  *string `json:"category"`
	TimeStart *string `json:"time_start"`
	TimeEnd   *string `json:"time_end"`
}

// ReconcileInput is the full desired state of one day: its times, the
// complete activity sets, and the IDs the caller wants gone.
type ReconcileInput struct {
	Date                      string          `json:"date"`
	TimeIn                    *string         `json:"time_in"`
	TimeOut                   *string         `json:"time_out"`
	Activities                []ActivityInput `json:"activities"`
	SpecialActivities         []ActivityInput `json:"special_activities"`
	DeletedActivityIDs        []uint          `json:"deleted_activity_ids"`
	DeletedSpecialActivityIDs []uint          `json:"deleted_special_activity_ids"`
}

// Service brings persisted Day/Activity rows in line with a submitted
// desired state. Every reconcile runs inside a single transaction: either
// the whole batch lands or none of it does.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Reconcile creates the Day if absent, updates its times unconditionally,
// deletes the listed activity IDs, and upserts the submitted activity sets.
// Calling it twice with the same input is idempotent.
func (s *Service) Reconcile(ctx context.Context, in ReconcileInput) (*database.Day, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var day database.Day
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", in.Date).First(&day).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("query day: %w", err)
			}
			day = database.Day{Date: in.Date, TimeIn: in.TimeIn, TimeOut: in.TimeOut}
			if err := tx.Create(&day).Error; err != nil {
				return fmt.Errorf("create day: %w", err)
			}
		}

		// Times are taken from the submission even when the day pre-existed;
		// last write wins.
		if err := tx.Model(&day).Updates(map[string]any{
			"time_in":  in.TimeIn,
			"time_out": in.TimeOut,
		}).Error; err != nil {
			return fmt.Errorf("update day times: %w", err)
		}

		if len(in.DeletedActivityIDs) > 0 {
			if err := tx.Unscoped().Where("day_id = ? AND id IN ?", day.ID, in.DeletedActivityIDs).
				Delete(&database.Activity{}).Error; err != nil {
				return fmt.Errorf("delete activities: %w", err)
			}
		}
		if len(in.DeletedSpecialActivityIDs) > 0 {
			if err := tx.Unscoped().Where("day_id = ? AND id IN ?", day.ID, in.DeletedSpecialActivityIDs).
				Delete(&database.SpecialActivity{}).Error; err != nil {
				return fmt.Errorf("delete special activities: %w", err)
			}
		}

		for _, a := range in.Activities {
			if err := upsertActivity(tx, day.ID, a); err != nil {
				return err
			}
		}
		for _, a := range in.SpecialActivities {
			if err := upsertSpecialActivity(tx, day.ID, a); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByDate(ctx, in.Date)
}

func upsertActivity(tx *gorm.DB, dayID uint, in ActivityInput) error {
	if in.ID != 0 {
		res := tx.Model(&database.Activity{}).
			Where("id = ? AND day_id = ?", in.ID, dayID).
			Updates(map[string]any{
				"content":    in.Content,
				"category":   in.Category,
				"time_start": in.TimeStart,
				"time_end":   in.TimeEnd,
			})
		if res.Error != nil {
			return fmt.Errorf("update activity %d: %w", in.ID, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		// Stale ID (row already deleted); fall through and recreate.
	}

	row := database.Activity{
		Content:   in.Content,
		Category:  in.Category,
		TimeStart: in.TimeStart,
		TimeEnd:   in.TimeEnd,
		DayID:     dayID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func upsertSpecialActivity(tx *gorm.DB, dayID uint, in ActivityInput) error {
	if in.ID != 0 {
		res := tx.Model(&database.SpecialActivity{}).
			Where("id = ? AND day_id = ?", in.ID, dayID).
			Updates(map[string]any{
				"content":    in.Content,
				"category":   in.Category,
				"time_start": in.TimeStart,
				"time_end":   in.TimeEnd,
			})
		if res.Error != nil {
			return fmt.Errorf("update special activity %d: %w", in.ID, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}

	row := database.SpecialActivity{
		Content:   in.Content,
		Category:  in.Category,
		TimeStart: in.TimeStart,
		TimeEnd:   in.TimeEnd,
		DayID:     dayID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("insert special activity: %w", err)
	}
	return nil
}

// GetByDate loads a Day with both activity sets, ordered by start time.
// Returns ErrDayNotFound when no row exists for the date.
func (s *Service) GetByDate(ctx context.Context, date string) (*database.Day, error) {
	if !ValidDate(date) {
		return nil, ErrInvalidDate
	}

	var day database.Day
	err := s.db.WithContext(ctx).
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("time_start, id") }).
		Preload("SpecialActivities", func(db *gorm.DB) *gorm.DB { return db.Order("time_start, id") }).
		Where("date = ?", date).
		First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, fmt.Errorf("query day: %w", err)
	}
	return &day, nil
}

// ListRange loads every Day with a row in [from, to], ascending by date.
// Dates with no Day are simply absent from the result.
func (s *Service) ListRange(ctx context.Context, from, to string) ([]database.Day, error) {
	if !ValidDate(from) || !ValidDate(to) {
		return nil, ErrInvalidDate
	}

	var days []database.Day
	err := s.db.WithContext(ctx).
		Preload("Activities").
		Preload("SpecialActivities").
		Where("date BETWEEN ? AND ?", from, to).
		Order("date").
		Find(&days).Error
	if err != nil {
		return nil, fmt.Errorf("query days in range: %w", err)
	}
	return days, nil
}

// DeleteDay removes a Day and, via the FK cascade, everything it owns.
func (s *Service) DeleteDay(ctx context.Context, date string) error {
	if !ValidDate(date) {
		return ErrInvalidDate
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var day database.Day
		if err := tx.Where("date = ?", date).First(&day).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDayNotFound
			}
			return fmt.Errorf("query day: %w", err)
		}

		// Hard-delete throughout: a soft-deleted Day would still hold the
		// unique date index and block re-creation of the same date.
		if err := tx.Unscoped().Where("day_id = ?", day.ID).Delete(&database.Activity{}).Error; err != nil {
			return fmt.Errorf("delete activities: %w", err)
		}
		if err := tx.Unscoped().Where("day_id = ?", day.ID).Delete(&database.SpecialActivity{}).Error; err != nil {
			return fmt.Errorf("delete special activities: %w", err)
		}
		if err := tx.Unscoped().Delete(&day).Error; err != nil {
			return fmt.Errorf("delete day: %w", err)
		}
		return nil
	})
}

func validateInput(in ReconcileInput) error {
	if !ValidDate(in.Date) {
		return ErrInvalidDate
	}
	for _, t := range []*string{in.TimeIn, in.TimeOut} {
		if t != nil && !ValidTime(*t) {
			return ErrInvalidTime
		}
	}
	for _, set := range [][]ActivityInput{in.Activities, in.SpecialActivities} {
		for _, a := range set {
			if a.Content == "" {
				return ErrEmptyContent
			}
			for _, t := range []*string{a.TimeStart, a.TimeEnd} {
				if t != nil && !ValidTime(*t) {
					return ErrInvalidTime
				}
			}
		}
	}
	return nil
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a 24-hour clock time in HH:MM:SS form.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

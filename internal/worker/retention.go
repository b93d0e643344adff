package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/storage"
)

// RetentionJob prunes export rows and their stored files after the
// configured retention window.
type RetentionJob struct {
	db            *gorm.DB
	store         storage.Store
	retentionDays int
	logger        *slog.Logger
}

func NewRetentionJob(db *gorm.DB, store storage.Store, retentionDays int, logger *slog.Logger) *RetentionJob {
	return &RetentionJob{
		db:            db,
		store:         store,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Schedule registers the job to run once a day, off-peak. A retention of
// zero or less disables pruning entirely.
func (j *RetentionJob) Schedule(scheduler gocron.Scheduler) error {
	if j.retentionDays <= 0 {
		j.logger.Info("export retention disabled")
		return nil
	}
	_, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(j.Run),
	)
	if err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	return nil
}

// Run deletes every export older than the retention window. File removal
// failures are logged but do not keep the row alive; the store delete is
// idempotent so a retried row is harmless.
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)

	var stale []database.ReportExport
	if err := j.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Find(&stale).Error; err != nil {
		j.logger.Error("query stale exports failed", slog.Any("error", err))
		return
	}
	if len(stale) == 0 {
		return
	}

	removed := 0
	for _, export := range stale {
		if export.ObjectKey != "" {
			if err := j.store.Delete(ctx, export.ObjectKey); err != nil {
				j.logger.Warn("delete stored export file failed",
					slog.Uint64("export_id", uint64(export.ID)),
					slog.String("object_key", export.ObjectKey),
					slog.Any("error", err),
				)
			}
		}
		if err := j.db.WithContext(ctx).Unscoped().Delete(&database.ReportExport{}, export.ID).Error; err != nil {
			j.logger.Error("delete export row failed",
				slog.Uint64("export_id", uint64(export.ID)),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}

	j.logger.Info("export retention sweep finished",
		slog.Int("candidates", len(stale)),
		slog.Int("removed", removed),
		slog.Time("cutoff", cutoff),
	)
}

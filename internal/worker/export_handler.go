package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/errcode"
	"daylog/internal/render"
	"daylog/internal/report"
	"daylog/internal/storage"
	"daylog/internal/tasks"
)

// ExportTaskHandler consumes report export tasks.
type ExportTaskHandler struct {
	db          *gorm.DB
	builder     *report.Builder
	store       storage.Store
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewExportTaskHandler builds the handler.
func NewExportTaskHandler(
	db *gorm.DB,
	builder *report.Builder,
	store storage.Store,
	redisClient *redis.Client,
	logger *slog.Logger,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		db:          db,
		builder:     builder,
		store:       store,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask implements asynq.Handler: aggregate, render, store, notify.
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ReportExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("export_id", uint64(payload.ExportID)),
	)

	var export database.ReportExport
	if err := h.db.WithContext(ctx).First(&export, payload.ExportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("export not found, skipping task")
			return nil
		}
		log.Error("query export failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("user_id", uint64(export.UserID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		msg := strings.TrimSpace(retErr.Error())
		if err := h.db.WithContext(ctx).Model(&export).Updates(map[string]any{
			"status":        database.ExportStatusFailed,
			"error_message": msg,
		}).Error; err != nil {
			log.Error("mark export failed", slog.Any("error", err))
		}

		code := errcode.SystemError
		if errors.Is(retErr, report.ErrUserNotFound) {
			code = errcode.ResourceMissing
		}
		notify := ExportNotifyMessage{
			Status:        "error",
			ExportID:      export.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     code,
			ErrorMessage:  msg,
		}
		if err := h.publishNotify(ctx, export.UserID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	var opts report.ExportPayload
	if len(export.Options) > 0 {
		if err := json.Unmarshal(export.Options, &opts); err != nil {
			return fmt.Errorf("decode export options: %w", err)
		}
	}

	doc, err := h.builder.Build(ctx, export.UserID, export.PeriodStart, export.PeriodEnd, opts.Options, opts.Sections)
	if err != nil {
		log.Error("build report document failed", slog.Any("error", err))
		return err
	}

	renderer := render.For(render.Output(export.OutputFormat), render.Style(export.DocumentFormat))
	data, err := renderer.Render(ctx, doc)
	if err != nil {
		log.Error("render report failed", slog.Any("error", err))
		return err
	}

	fileName := render.FileName(doc, renderer.Ext())
	objectKey := fmt.Sprintf("reports/%d/%d/%s", export.UserID, export.ID, fileName)

	if err := h.store.Save(ctx, objectKey, bytes.NewReader(data), int64(len(data)), renderer.ContentType()); err != nil {
		log.Error("store rendered report failed", slog.Any("error", err))
		return err
	}

	if err := h.db.WithContext(ctx).Model(&export).Updates(map[string]any{
		"file_name":  fileName,
		"object_key": objectKey,
		"status":     database.ExportStatusCompleted,
	}).Error; err != nil {
		log.Error("update export failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		ExportID:      export.ID,
		FileName:      fileName,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if !doc.HasDailyLog() {
		// The range had no logged days; the file still renders, but the
		// client can warn.
		notify.ErrorCode = errcode.EmptyReport
		notify.ErrorMessage = "no logged days in the selected range"
	}
	if err := h.publishNotify(ctx, export.UserID, notify); err != nil {
		log.Error("publish export notification failed", slog.Any("error", err))
		return err
	}

	log.Info("report export completed", slog.String("file", fileName), slog.Int("bytes", len(data)))
	return nil
}

func (h *ExportTaskHandler) publishNotify(ctx context.Context, userID uint, notify ExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"daylog/internal/api/middleware"
	"daylog/internal/database"
	"daylog/internal/render"
	"daylog/internal/report"
	"daylog/internal/storage"
	"daylog/internal/tasks"
)

// ReportHandler accepts export requests, lists past exports and streams
// finished files back to the client.
type ReportHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	store       storage.Store
}

func NewReportHandler(db *gorm.DB, asynqClient *asynq.Client, store storage.Store) *ReportHandler {
	return &ReportHandler{
		db:          db,
		asynqClient: asynqClient,
		store:       store,
	}
}

type createReportRequest struct {
	Title          string          `json:"title"`
	PeriodStart    string          `json:"period_start" binding:"required"`
	PeriodEnd      string          `json:"period_end" binding:"required"`
	OutputFormat   string          `json:"output_format" binding:"required"`
	DocumentFormat string          `json:"document_format"`
	Options        report.Options  `json:"options"`
	Sections       report.Sections `json:"sections"`
}

type reportListItem struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	PeriodStart    string    `json:"period_start"`
	PeriodEnd      string    `json:"period_end"`
	OutputFormat   string    `json:"output_format"`
	DocumentFormat string    `json:"document_format"`
	FileName       string    `json:"file_name,omitempty"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateReport persists a pending export and enqueues the generation task.
// The file is produced asynchronously; completion arrives over the
// websocket channel.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if _, err := report.DatesInRange(req.PeriodStart, req.PeriodEnd); err != nil {
		BadRequest(c, "invalid period, expected period_start <= period_end in YYYY-MM-DD form")
		return
	}

	switch render.Output(req.OutputFormat) {
	case render.OutputPDF, render.OutputWord, render.OutputExcel:
	default:
		BadRequest(c, "unknown output format")
		return
	}
	if req.DocumentFormat != "" {
		switch render.Style(req.DocumentFormat) {
		case render.StyleProfessional, render.StyleMonotone, render.StyleSimple, render.StyleCreative:
		default:
			BadRequest(c, "unknown document format")
			return
		}
	}

	payload, err := json.Marshal(report.ExportPayload{
		Options:  req.Options,
		Sections: req.Sections,
	})
	if err != nil {
		Internal(c, "failed to encode export options")
		return
	}

	export := database.ReportExport{
		UserID:         userID,
		Title:          req.Title,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		OutputFormat:   req.OutputFormat,
		DocumentFormat: req.DocumentFormat,
		Status:         database.ExportStatusPending,
		Options:        payload,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&export).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create export failed", slog.Any("error", err))
		Internal(c, "failed to create export")
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewReportExportTask(export.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue export failed", slog.Any("error", err))
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"export_id": export.ID,
		"task_id":   info.ID,
	})
}

// ListReports returns the caller's exports, newest first.
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var exports []database.ReportExport
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&exports).Error; err != nil {
		Internal(c, "failed to list exports")
		return
	}

	items := make([]reportListItem, 0, len(exports))
	for _, e := range exports {
		items = append(items, reportListItem{
			ID:             e.ID,
			Title:          e.Title,
			PeriodStart:    e.PeriodStart,
			PeriodEnd:      e.PeriodEnd,
			OutputFormat:   e.OutputFormat,
			DocumentFormat: e.DocumentFormat,
			FileName:       e.FileName,
			Status:         e.Status,
			ErrorMessage:   e.ErrorMessage,
			CreatedAt:      e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}

// DownloadReport streams a completed export file.
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	exportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid export id")
		return
	}

	ctx := c.Request.Context()
	var export database.ReportExport
	if err := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(exportID), userID).
		First(&export).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "export not found")
			return
		}
		Internal(c, "failed to query export")
		return
	}

	if export.Status != database.ExportStatusCompleted || export.ObjectKey == "" {
		Conflict(c, "export is not ready")
		return
	}

	reader, err := h.store.Open(ctx, export.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(c, "export file is gone")
			return
		}
		middleware.LoggerFromContext(c).Error("open export file failed", slog.Any("error", err))
		Internal(c, "failed to open export file")
		return
	}
	defer reader.Close()

	renderer := render.For(render.Output(export.OutputFormat), render.Style(export.DocumentFormat))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Header("Content-Type", renderer.ContentType())
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		middleware.LoggerFromContext(c).Warn("stream export file interrupted", slog.Any("error", err))
	}
}

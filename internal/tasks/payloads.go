package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants shared by the queue producer and consumer.
const (
	TypeReportExport = "report:export"
)

// ReportExportPayload carries the minimum needed to run one export job.
type ReportExportPayload struct {
	ExportID      uint   `json:"export_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewReportExportTask builds a report export task.
func NewReportExportTask(exportID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ReportExportPayload{
		ExportID:      exportID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReportExport, payload), nil
}

package worker

// ExportNotifyMessage is the websocket message protocol, forwarded to the
// client through Redis pub/sub. Field names match the client parser.
type ExportNotifyMessage struct {
	Status        string `json:"status"`
	ExportID      uint   `json:"export_id"`
	FileName      string `json:"file_name"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

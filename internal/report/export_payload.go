package report

// ExportPayload is the blob persisted on a ReportExport row: the section
// flags plus the user-entered material, kept so a job can be retried with
// the exact state it was requested with.
type ExportPayload struct {
	Options  Options  `json:"options"`
	Sections Sections `json:"sections"`
}

package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/daylog"
)

// Kind selects which template table an operation targets.
type Kind string

const (
	KindLog    Kind = "log"
	KindExport Kind = "export"
)

// SnapshotVersion is written into every new snapshot so the shape can
// evolve without breaking old templates.
const SnapshotVersion = 1

var (
	// ErrNameRequired is returned when a template is created without a name.
	ErrNameRequired = errors.New("template name is required")
	// ErrInvalidSnapshot is returned for malformed or wrong-shape snapshot JSON.
	ErrInvalidSnapshot = errors.New("invalid template snapshot")
	// ErrTemplateNotFound is returned when the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrUnknownKind is returned for kinds other than log/export.
	ErrUnknownKind = errors.New("unknown template kind")
)

// DayData is the day-level slice of a snapshot.
type DayData struct {
	Date    string  `json:"date"`
	TimeIn  *string `json:"time_in"`
	TimeOut *string `json:"time_out"`
}

// Snapshot is the full serialized state of a day: its fields plus both
// activity lists. Activity IDs are deliberately not captured; applying a
// snapshot always yields rows that insert as new on the next save.
type Snapshot struct {
	Version           int                    `json:"version"`
	DayData           DayData                `json:"dayData"`
	Activities        []daylog.ActivityInput `json:"activities"`
	SpecialActivities []daylog.ActivityInput `json:"specialActivities"`
}

// Template is the engine's view of a stored template row, independent of
// which table it lives in.
type Template struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	ColorCode   string   `json:"color_code"`
	Snapshot    Snapshot `json:"snapshot"`
	CreatedAt   string   `json:"created_at"`
}

// BatchResult reports the outcome of an independent batch delete.
type BatchResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Engine stores and restores immutable day snapshots.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine { return &Engine{db: db} }

// Create validates the snapshot and persists a new template. Templates are
// immutable once created; there is no update path.
func (e *Engine) Create(ctx context.Context, kind Kind, name string, description *string, colorCode string, snap Snapshot) (uint, error) {
	if name == "" {
		return 0, ErrNameRequired
	}
	if err := validateSnapshot(snap); err != nil {
		return 0, err
	}
	snap.Version = SnapshotVersion

	content, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	switch kind {
	case KindLog:
		row := database.LogTemplate{Name: name, Description: description, ColorCode: colorCode, Content: content}
		if err := e.db.WithContext(ctx).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("create log template: %w", err)
		}
		return row.ID, nil
	case KindExport:
		row := database.ExportTemplate{Name: name, Description: description, ColorCode: colorCode, Content: content}
		if err := e.db.WithContext(ctx).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("create export template: %w", err)
		}
		return row.ID, nil
	default:
		return 0, ErrUnknownKind
	}
}

// CreateFromJSON accepts a raw snapshot blob, for callers that hold the
// day state as JSON already. The blob must decode into the expected shape.
func (e *Engine) CreateFromJSON(ctx context.Context, kind Kind, name string, description *string, colorCode string, raw []byte) (uint, error) {
	snap, err := decodeSnapshot(raw)
	if err != nil {
		return 0, err
	}
	return e.Create(ctx, kind, name, description, colorCode, *snap)
}

// Apply reads a template and returns its restored snapshot. A parse failure
// surfaces as ErrInvalidSnapshot and never touches the stored row; once
// applied, the result is ordinary editable state with no back-reference.
func (e *Engine) Apply(ctx context.Context, kind Kind, id uint) (*Snapshot, error) {
	tpl, err := e.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &tpl.Snapshot, nil
}

// Get loads one template with its decoded snapshot.
func (e *Engine) Get(ctx context.Context, kind Kind, id uint) (*Template, error) {
	name, description, colorCode, content, createdAt, err := e.fetch(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	snap, err := decodeSnapshot(content)
	if err != nil {
		return nil, err
	}

	return &Template{
		ID:          id,
		Name:        name,
		Description: description,
		ColorCode:   colorCode,
		Snapshot:    *snap,
		CreatedAt:   createdAt,
	}, nil
}

// List returns all templates of a kind, newest first. Snapshot decoding is
// deferred to Apply; the list only carries metadata.
func (e *Engine) List(ctx context.Context, kind Kind) ([]Template, error) {
	items := make([]Template, 0)

	switch kind {
	case KindLog:
		var rows []database.LogTemplate
		if err := e.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list log templates: %w", err)
		}
		for _, r := range rows {
			items = append(items, Template{
				ID: r.ID, Name: r.Name, Description: r.Description,
				ColorCode: r.ColorCode, CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
	case KindExport:
		var rows []database.ExportTemplate
		if err := e.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list export templates: %w", err)
		}
		for _, r := range rows {
			items = append(items, Template{
				ID: r.ID, Name: r.Name, Description: r.Description,
				ColorCode: r.ColorCode, CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
	default:
		return nil, ErrUnknownKind
	}

	return items, nil
}

// DeleteBatch deletes each listed template independently and reports
// succeeded/failed counts. Missing IDs count as failures; earlier successes
// are never rolled back (delete-by-ID is idempotent).
func (e *Engine) DeleteBatch(ctx context.Context, kind Kind, ids []uint) (BatchResult, error) {
	if kind != KindLog && kind != KindExport {
		return BatchResult{}, ErrUnknownKind
	}

	var result BatchResult
	for _, id := range ids {
		var res *gorm.DB
		switch kind {
		case KindLog:
			res = e.db.WithContext(ctx).Unscoped().Delete(&database.LogTemplate{}, id)
		case KindExport:
			res = e.db.WithContext(ctx).Unscoped().Delete(&database.ExportTemplate{}, id)
		}
		if res.Error != nil || res.RowsAffected == 0 {
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func (e *Engine) fetch(ctx context.Context, kind Kind, id uint) (name string, description *string, colorCode string, content []byte, createdAt string, err error) {
	switch kind {
	case KindLog:
		var row database.LogTemplate
		if dbErr := e.db.WithContext(ctx).First(&row, id).Error; dbErr != nil {
			if errors.Is(dbErr, gorm.ErrRecordNotFound) {
				return "", nil, "", nil, "", ErrTemplateNotFound
			}
			return "", nil, "", nil, "", fmt.Errorf("query log template: %w", dbErr)
		}
		return row.Name, row.Description, row.ColorCode, row.Content, row.CreatedAt.Format("2006-01-02 15:04:05"), nil
	case KindExport:
		var row database.ExportTemplate
		if dbErr := e.db.WithContext(ctx).First(&row, id).Error; dbErr != nil {
			if errors.Is(dbErr, gorm.ErrRecordNotFound) {
				return "", nil, "", nil, "", ErrTemplateNotFound
			}
			return "", nil, "", nil, "", fmt.Errorf("query export template: %w", dbErr)
		}
		return row.Name, row.Description, row.ColorCode, row.Content, row.CreatedAt.Format("2006-01-02 15:04:05"), nil
	default:
		return "", nil, "", nil, "", ErrUnknownKind
	}
}

func decodeSnapshot(raw []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func validateSnapshot(snap Snapshot) error {
	if snap.DayData.Date != "" && !daylog.ValidDate(snap.DayData.Date) {
		return fmt.Errorf("%w: bad dayData.date", ErrInvalidSnapshot)
	}
	for _, t := range []*string{snap.DayData.TimeIn, snap.DayData.TimeOut} {
		if t != nil && !daylog.ValidTime(*t) {
			return fmt.Errorf("%w: bad dayData time", ErrInvalidSnapshot)
		}
	}
	for _, set := range [][]daylog.ActivityInput{snap.Activities, snap.SpecialActivities} {
		for _, a := range set {
			if a.Content == "" {
				return fmt.Errorf("%w: empty activity content", ErrInvalidSnapshot)
			}
		}
	}
	return nil
}

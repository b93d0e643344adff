package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daylog/internal/api/middleware"
	"daylog/internal/template"
)

// TemplateHandler serves both template kinds through one route family; the
// :kind parameter selects the table.
type TemplateHandler struct {
	engine *template.Engine
}

func NewTemplateHandler(engine *template.Engine) *TemplateHandler {
	return &TemplateHandler{engine: engine}
}

type createTemplateRequest struct {
	Name        string            `json:"name" binding:"required,min=1,max=128"`
	Description *string           `json:"description"`
	ColorCode   string            `json:"color_code"`
	Snapshot    template.Snapshot `json:"snapshot" binding:"required"`
}

type deleteTemplatesRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func templateKind(c *gin.Context) (template.Kind, bool) {
	kind := template.Kind(c.Param("kind"))
	if kind != template.KindLog && kind != template.KindExport {
		BadRequest(c, "unknown template kind")
		return "", false
	}
	return kind, true
}

// CreateTemplate snapshots the submitted day state under a name.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	kind, ok := templateKind(c)
	if !ok {
		return
	}

	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	id, err := h.engine.Create(c.Request.Context(), kind, req.Name, req.Description, req.ColorCode, req.Snapshot)
	if err != nil {
		switch {
		case errors.Is(err, template.ErrNameRequired),
			errors.Is(err, template.ErrInvalidSnapshot):
			BadRequest(c, err.Error())
		default:
			middleware.LoggerFromContext(c).Error("create template failed", slog.Any("error", err))
			Internal(c, "failed to create template")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListTemplates returns the kind's templates, metadata only.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	kind, ok := templateKind(c)
	if !ok {
		return
	}

	items, err := h.engine.List(c.Request.Context(), kind)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list templates failed", slog.Any("error", err))
		Internal(c, "failed to list templates")
		return
	}

	c.JSON(http.StatusOK, items)
}

// ApplyTemplate returns the restored snapshot of one template. The result
// is plain editable state; it keeps no link back to the template.
func (h *TemplateHandler) ApplyTemplate(c *gin.Context) {
	kind, ok := templateKind(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid template id")
		return
	}

	snap, err := h.engine.Apply(c.Request.Context(), kind, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, template.ErrTemplateNotFound):
			NotFound(c, "template not found")
		case errors.Is(err, template.ErrInvalidSnapshot):
			middleware.LoggerFromContext(c).Error("template snapshot corrupt",
				slog.Uint64("template_id", id), slog.Any("error", err))
			Internal(c, "template snapshot is corrupt")
		default:
			middleware.LoggerFromContext(c).Error("apply template failed", slog.Any("error", err))
			Internal(c, "failed to apply template")
		}
		return
	}

	c.JSON(http.StatusOK, snap)
}

// DeleteTemplates deletes a batch of templates independently and reports
// how many succeeded and failed.
func (h *TemplateHandler) DeleteTemplates(c *gin.Context) {
	kind, ok := templateKind(c)
	if !ok {
		return
	}

	var req deleteTemplatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.engine.DeleteBatch(c.Request.Context(), kind, req.IDs)
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete templates failed", slog.Any("error", err))
		Internal(c, "failed to delete templates")
		return
	}

	c.JSON(http.StatusOK, result)
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"daylog/internal/api/middleware"
	"daylog/internal/database"
	"daylog/internal/storage"
)

// AccountHandler serves the profile, avatar and responsibilities endpoints.
type AccountHandler struct {
	db        *gorm.DB
	store     storage.Store
	logger    *slog.Logger
	clamdAddr string
}

func NewAccountHandler(db *gorm.DB, store storage.Store, logger *slog.Logger, clamdAddr string) *AccountHandler {
	return &AccountHandler{
		db:        db,
		store:     store,
		logger:    logger,
		clamdAddr: clamdAddr,
	}
}

type accountResponse struct {
	ID           uint                      `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email"`
	PathToIcon   string                    `json:"path_to_icon,omitempty"`
	Roles        []string                  `json:"roles"`
	WorkSchedule []database.SchedulePeriod `json:"work_schedule"`
}

type updateAccountRequest struct {
	Name         string                    `json:"name" binding:"required,min=1,max=128"`
	Roles        []string                  `json:"roles"`
	WorkSchedule []database.SchedulePeriod `json:"work_schedule"`
}

// GetAccount returns the caller's profile.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "account not found")
			return
		}
		Internal(c, "failed to query account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(user))
}

// UpdateAccount replaces the caller's profile fields.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	for _, period := range req.WorkSchedule {
		if period.StartDay == "" || period.EndDay == "" {
			BadRequest(c, "schedule period days must not be empty")
			return
		}
	}

	roles, err := json.Marshal(req.Roles)
	if err != nil {
		BadRequest(c, "invalid roles")
		return
	}
	schedule, err := json.Marshal(req.WorkSchedule)
	if err != nil {
		BadRequest(c, "invalid work schedule")
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"name":          req.Name,
			"roles":         datatypes.JSON(roles),
			"work_schedule": datatypes.JSON(schedule),
		}).Error; err != nil {
		Internal(c, "failed to update account")
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		Internal(c, "failed to reload account")
		return
	}

	c.JSON(http.StatusOK, newAccountResponse(user))
}

// UploadAvatar stores a profile image, scanning it first when a clamd
// daemon is configured.
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	logger := middleware.LoggerFromContext(c)

	if h.clamdAddr != "" {
		clean, err := h.scanUpload(file)
		if err != nil {
			logger.Error("scan avatar failed", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	ext := strings.ToLower(path.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		BadRequest(c, "unsupported image type")
		return
	}

	objectKey := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx := c.Request.Context()
	if err := h.store.Save(ctx, objectKey, reader, file.Size, contentType); err != nil {
		logger.Error("store avatar failed", slog.Any("error", err))
		Internal(c, "failed to store file")
		return
	}

	if err := h.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Update("path_to_icon", objectKey).Error; err != nil {
		Internal(c, "failed to update account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"object_key": objectKey})
}

func (h *AccountHandler) scanUpload(file *multipart.FileHeader) (bool, error) {
	reader, err := file.Open()
	if err != nil {
		return false, fmt.Errorf("open upload: %w", err)
	}
	defer reader.Close()

	clamdClient := clamd.NewClamd(h.clamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(reader, abortChan)
	if err != nil {
		return false, fmt.Errorf("scan stream: %w", err)
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}

type responsibilitiesResponse struct {
	Content string `json:"content"`
}

type updateResponsibilitiesRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetResponsibilities returns the caller's latest responsibilities summary,
// or an empty content when none has been saved.
func (h *AccountHandler) GetResponsibilities(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var row database.ResponsibilitiesSummary
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, responsibilitiesResponse{})
			return
		}
		Internal(c, "failed to query responsibilities")
		return
	}

	c.JSON(http.StatusOK, responsibilitiesResponse{Content: row.Content})
}

// UpdateResponsibilities replaces the stored summary.
func (h *AccountHandler) UpdateResponsibilities(c *gin.Context) {
	var req updateResponsibilitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("user_id = ?", userID).
			Delete(&database.ResponsibilitiesSummary{}).Error; err != nil {
			return err
		}
		row := database.ResponsibilitiesSummary{UserID: userID, Content: req.Content}
		return tx.Create(&row).Error
	})
	if err != nil {
		Internal(c, "failed to update responsibilities")
		return
	}

	c.JSON(http.StatusOK, responsibilitiesResponse{Content: req.Content})
}

func newAccountResponse(user database.User) accountResponse {
	resp := accountResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PathToIcon:   user.PathToIcon,
		Roles:        []string{},
		WorkSchedule: []database.SchedulePeriod{},
	}
	if len(user.Roles) > 0 {
		_ = json.Unmarshal(user.Roles, &resp.Roles)
	}
	if len(user.WorkSchedule) > 0 {
		_ = json.Unmarshal(user.WorkSchedule, &resp.WorkSchedule)
	}
	return resp
}

package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createAnnouncementRequest struct {
	Title       string     `json:"title" binding:"required"`
	Body        *string    `json:"body"`
	TargetRoles []int      `json:"target_roles" binding:"required,min=1"`
	StartsAt    *time.Time `json:"starts_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// GetAnnouncements lists the live announcements targeted at the caller's role.
func GetAnnouncements(c *gin.Context) {
	roleID, ok := getCurrentRoleID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := time.Now()
	var rows []models.Announcement
	if err := config.DB.
		Where("delete_at IS NULL AND starts_at <= ? AND (expires_at IS NULL OR expires_at > ?)", now, now).
		Order("starts_at DESC").
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Role targeting is stored as a JSON array of role ids.
	items := make([]models.Announcement, 0, len(rows))
	for _, a := range rows {
		var roles []int
		if len(a.TargetRoles) > 0 {
			if err := json.Unmarshal(a.TargetRoles, &roles); err != nil {
				continue
			}
		}
		for _, r := range roles {
			if r == roleID {
				items = append(items, a)
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// CreateAnnouncement creates a role-targeted announcement (admin only).
func CreateAnnouncement(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	roles, err := json.Marshal(req.TargetRoles)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target roles"})
		return
	}

	now := time.Now()
	startsAt := now
	if req.StartsAt != nil {
		startsAt = *req.StartsAt
	}

	announcement := models.Announcement{
		AnnouncementID: uuid.NewString(),
		Title:          req.Title,
		Body:           req.Body,
		TargetRoles:    roles,
		StartsAt:       startsAt,
		ExpiresAt:      req.ExpiresAt,
		CreatedBy:      uid,
		CreateAt:       &now,
		UpdateAt:       &now,
	}
	if err := config.DB.Create(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": announcement.AnnouncementID})
}

// ExpireAnnouncement ends an announcement immediately (admin only).
func ExpireAnnouncement(c *gin.Context) {
	now := time.Now()
	result := config.DB.Model(&models.Announcement{}).
		Where("announcement_id = ? AND delete_at IS NULL", c.Param("id")).
		Updates(map[string]any{"expires_at": now, "update_at": now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

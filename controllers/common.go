package controllers

import (
	"log"
	"net/http"
	"strconv"

	"innovation-tracking-api/services"
	"innovation-tracking-api/utils"

	"github.com/gin-gonic/gin"
)

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

func getCurrentRoleID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("roleID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

// currentActor builds the service-layer actor from the authenticated request.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		return services.Actor{}, false
	}
	roleID, _ := getCurrentRoleID(c)

	actor := services.Actor{UserID: userID, RoleID: roleID}
	if v, ok := c.Get("organisationID"); ok {
		if orgID, ok := v.(string); ok && orgID != "" {
			actor.OrganisationID = &orgID
		}
	}
	return actor, true
}

// respondServiceError translates a typed service error to its HTTP status.
// This is the single place errors cross the handler boundary.
func respondServiceError(c *gin.Context, err error) {
	svcErr := utils.AsServiceError(err)
	if svcErr.Kind == utils.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(svcErr.HTTPStatus(), gin.H{"error": svcErr.Message})
}

// parseLimitOffset reads pagination query params with bounded defaults.
func parseLimitOffset(c *gin.Context) (int, int) {
	limit := 20
	offset := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

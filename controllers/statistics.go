package controllers

import (
	"net/http"
	"strconv"

	"innovation-tracking-api/services"

	"github.com/gin-gonic/gin"
)

// GetAssessorWorkload returns completed/pending assessment counters for one
// assessor. Defaults to the caller when no id is given.
func GetAssessorWorkload(c *gin.Context) {
	uid, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	assessorID := uid
	if raw := c.Query("assessorId"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			assessorID = v
		}
	}

	svc := services.NewStatisticsService(nil)
	workload, err := svc.AssessorWorkload(c.Request.Context(), assessorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, workload)
}

// GetInnovationSupportStatistics counts an innovation's supports per status.
func GetInnovationSupportStatistics(c *gin.Context) {
	svc := services.NewStatisticsService(nil)

	counts, err := svc.SupportsByStatus(c.Request.Context(), c.Param("innovationId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"supports": counts})
}

// GetInnovationStatusStatistics counts innovations per lifecycle status.
func GetInnovationStatusStatistics(c *gin.Context) {
	svc := services.NewStatisticsService(nil)

	counts, err := svc.InnovationsByStatus(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"innovations": counts})
}

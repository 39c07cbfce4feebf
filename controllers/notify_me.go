package controllers

import (
	"net/http"
	"strings"
	"time"

	"innovation-tracking-api/models"
	"innovation-tracking-api/services"

	"github.com/gin-gonic/gin"
)

type subscriptionConfigRequest struct {
	EventType        string     `json:"event_type" binding:"required"`
	SubscriptionType string     `json:"subscription_type" binding:"required"`
	Date             *time.Time `json:"date"`
	PreConditions    *struct {
		Units    []string `json:"units"`
		Status   []string `json:"status"`
		Sections []string `json:"sections"`
	} `json:"pre_conditions"`
	CustomMessage *string `json:"custom_message"`
}

func (r subscriptionConfigRequest) toConfig() services.SubscriptionConfig {
	cfg := services.SubscriptionConfig{
		EventType:        models.NotifyMeEventType(r.EventType),
		SubscriptionType: models.NotifyMeSubscriptionType(r.SubscriptionType),
		Date:             r.Date,
		CustomMessage:    r.CustomMessage,
	}
	if r.PreConditions != nil {
		pre := &services.SubscriptionPreConditions{
			UnitIDs:  r.PreConditions.Units,
			Sections: r.PreConditions.Sections,
		}
		for _, status := range r.PreConditions.Status {
			pre.Statuses = append(pre.Statuses, models.SupportStatus(status))
		}
		cfg.PreConditions = pre
	}
	return cfg
}

type createSubscriptionRequest struct {
	InnovationID string `json:"innovation_id" binding:"required"`
	subscriptionConfigRequest
}

// CreateNotifyMeSubscription subscribes the caller to an innovation event.
func CreateNotifyMeSubscription(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewNotifyMeService(nil)
	subscriptionID, err := svc.CreateSubscription(c.Request.Context(), actor, req.InnovationID, req.toConfig())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": subscriptionID})
}

// UpdateNotifyMeSubscription replaces a subscription's config.
func UpdateNotifyMeSubscription(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req subscriptionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewNotifyMeService(nil)
	if err := svc.UpdateSubscription(c.Request.Context(), actor, c.Param("subscriptionId"), req.toConfig()); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteNotifyMeSubscription removes one subscription (idempotent).
func DeleteNotifyMeSubscription(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewNotifyMeService(nil)
	if err := svc.DeleteSubscription(c.Request.Context(), actor, c.Param("subscriptionId")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type deleteSubscriptionsRequest struct {
	IDs *[]string `json:"ids"`
}

// DeleteNotifyMeSubscriptions removes the caller's subscriptions, either the
// listed ids or all of them when no body is supplied.
func DeleteNotifyMeSubscriptions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req deleteSubscriptionsRequest
	_ = c.ShouldBindJSON(&req)

	svc := services.NewNotifyMeService(nil)
	if err := svc.DeleteSubscriptions(c.Request.Context(), actor, req.IDs); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetNotifyMeSubscription returns one rendered subscription.
func GetNotifyMeSubscription(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewNotifyMeService(nil)
	sub, err := svc.GetSubscription(c.Request.Context(), actor, c.Param("subscriptionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// GetInnovationNotifyMeSubscriptions lists the caller's subscriptions on an
// innovation.
func GetInnovationNotifyMeSubscriptions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewNotifyMeService(nil)
	subs, err := svc.GetInnovationSubscriptions(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": subs, "total": len(subs)})
}

// GetNotifyMeSubscriptions lists the caller's subscriptions grouped per
// innovation. ?withDetails=1 includes the rendered subscriptions.
func GetNotifyMeSubscriptions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	withDetails := c.Query("withDetails")
	details := withDetails == "1" || strings.EqualFold(withDetails, "true")

	svc := services.NewNotifyMeService(nil)
	groups, err := svc.GetNotifyMeSubscriptions(c.Request.Context(), actor, details)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": groups, "total": len(groups)})
}

package claim

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/api/v1/tasks/start", h.start)
	r.GET("/api/v1/users/:id/tasks", h.listByUser)
}

type startRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	CampaignID string `json:"campaign_id" binding:"required"`
}

func (h *Handler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and campaign_id are required"})
		return
	}

	result, err := h.svc.Start(c.Request.Context(), req.UserID, req.CampaignID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"tracking_link": result.TrackingLink,
		"campaign": gin.H{
			"title":        result.Title,
			"reward":       result.Reward,
			"instructions": result.Instructions,
		},
	})
}

func (h *Handler) listByUser(c *gin.Context) {
	claims, err := h.svc.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": claims})
}

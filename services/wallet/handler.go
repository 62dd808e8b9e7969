package wallet

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *Service
	notifier Notifier
}

func NewHandler(svc *Service, notifier Notifier) *Handler {
	return &Handler{svc: svc, notifier: notifier}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/api/v1/users/:id/balance", h.balance)
	r.GET("/api/v1/users/:id/balance/stream", h.stream)
}

func (h *Handler) balance(c *gin.Context) {
	account, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         account.ID,
		"coins":           account.Coins,
		"tasks_completed": account.TasksCompletedCount,
	})
}

// stream pushes balance change events to the client as SSE. The UI listens
// here instead of polling the balance endpoint.
func (h *Handler) stream(c *gin.Context) {
	if h.notifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "balance streaming not available"})
		return
	}

	events, cancel, err := h.notifier.Subscribe(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("balance", event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

package postback

import (
	"errors"
	"net/http"

	"github.com/Devraj069/TaskWin/pkg/errutil"
	"github.com/Devraj069/TaskWin/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the network-facing endpoints. Affiliate networks call
// from arbitrary origins with either verb, so CORS is wide open here and
// both GET and POST are accepted.
func (h *Handler) Register(r gin.IRouter) {
	grp := r.Group("/postback", middleware.OpenCORS())
	grp.GET("", h.receive)
	grp.POST("", h.receive)
	grp.OPTIONS("", h.receive) // preflight is absorbed by the CORS middleware
	grp.GET("/test", h.test)

	r.GET("/api/v1/users/:id/postbacks", h.logsByUser)
}

func (h *Handler) receive(c *gin.Context) {
	get := func(key string) string {
		if v := c.Query(key); v != "" {
			return v
		}
		return c.PostForm(key)
	}
	event := EventFromParams(get, c.ClientIP(), c.Request.UserAgent())

	result, err := h.svc.Handle(c.Request.Context(), event)
	if err != nil {
		h.fail(c, event, err)
		return
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "postback not applied"
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   msg,
			"userId":  result.UserID,
			"status":  result.Status,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Postback processed successfully",
		"userId":       result.UserID,
		"status":       result.Status,
		"coinsAwarded": result.CoinsAwarded,
	})
}

// fail mirrors the shape networks expect: success=false plus an error
// string, with the status code taken from the error class.
func (h *Handler) fail(c *gin.Context, event Event, err error) {
	var base errutil.BaseError
	if errors.As(err, &base) {
		c.JSON(base.Code.HTTPStatus(), gin.H{
			"success": false,
			"error":   base.Message,
			"userId":  event.UserID,
			"status":  event.Status,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
	})
}

// test feeds a synthetic approved event through the full pipeline so an
// integration can be verified without waiting on a real network.
func (h *Handler) test(c *gin.Context) {
	get := func(key string) string {
		switch key {
		case "sub_id":
			if v := c.Query("sub_id"); v != "" {
				return v
			}
			return "test_user"
		case "status":
			if v := c.Query("status"); v != "" {
				return v
			}
			return "approved"
		default:
			return c.Query(key)
		}
	}
	event := EventFromParams(get, c.ClientIP(), c.Request.UserAgent())
	if event.ConversionID == "" {
		event.ConversionID = h.svc.SyntheticConversionID(c.Request.Context(), "test")
	}

	result, err := h.svc.Handle(c.Request.Context(), event)
	if err != nil {
		h.fail(c, event, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      result.Success,
		"message":      "Test postback executed",
		"userId":       result.UserID,
		"status":       result.Status,
		"coinsAwarded": result.CoinsAwarded,
	})
}

func (h *Handler) logsByUser(c *gin.Context) {
	records, err := h.svc.LogsByUser(c.Request.Context(), c.Param("id"), 0)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"postbacks": records})
}

package activity

import (
	"net/http"

	"github.com/Devraj069/TaskWin/pkg/db/pagination"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(NewService),
)

var Routes = fx.Module("activity.routes",
	fx.Invoke(registerRoutes),
)

func registerRoutes(engine *gin.Engine, svc *Service) {
	engine.GET("/api/v1/users/:id/activities", func(c *gin.Context) {
		var page pagination.Pagination
		if err := c.ShouldBindQuery(&page); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination parameters"})
			return
		}

		records, info, err := svc.ListPage(c.Request.Context(), c.Param("id"), page)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"activities": records, "page_info": info})
	})
}

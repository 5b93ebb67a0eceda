package review

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/middleware"
	"github.com/openlore/lorebase/internal/pkg/ratelimit"
)

// RegisterRoutes wires the review surface. The runner and repository are
// built by the caller because they share dependencies (classifier,
// notifier) with other features.
func RegisterRoutes(router *gin.RouterGroup, runner *Runner, repo *Repository) {
	handler := NewHandler(runner, repo)

	// Review submission is expensive; keep it behind a per-user limit.
	limiter := ratelimit.New(30, time.Minute)
	limiter.StartCleanup(5 * time.Minute)

	group := router.Group("/review")
	group.Use(middleware.Auth())
	{
		group.POST("/contents/:id", ratelimit.UserBasedMiddleware(limiter), handler.SubmitReview)
		group.POST("/batch", ratelimit.UserBasedMiddleware(limiter), handler.SubmitBatch)
		group.GET("/tasks/:id", handler.GetTask)
		group.GET("/reports/:id", handler.GetReport)
		group.GET("/contents/:id/report", handler.GetContentReport)
	}
}

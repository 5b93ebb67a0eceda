package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/config"
	"github.com/openlore/lorebase/internal/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config) {
	repo := NewRepository(db)
	handler := NewHandler(repo)

	group := router.Group("/notifications")
	group.Use(middleware.Auth())
	{
		group.GET("", handler.ListNotifications)
		group.GET("/unread-count", handler.GetUnreadCount)
		group.POST("/:id/read", handler.MarkRead)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/devices", handler.RegisterDevice)
	}
}

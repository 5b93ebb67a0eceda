package contents

import (
	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/config"
	"github.com/openlore/lorebase/internal/middleware"
	"github.com/openlore/lorebase/internal/pkg/cloudinary"
	"go.mongodb.org/mongo-driver/mongo"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config, cld *cloudinary.Service) {
	repo := NewRepository(db)
	handler := NewHandler(repo, cld, cfg)

	group := router.Group("/contents")
	group.Use(middleware.Auth())
	{
		group.POST("", handler.CreateContent)
		group.GET("/mine", handler.ListMyContents)
		group.GET("/:id", handler.GetContent)
		group.POST("/:id/files", handler.AttachFile)
	}
}

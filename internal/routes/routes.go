package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/config"
	"github.com/openlore/lorebase/internal/extract"
	"github.com/openlore/lorebase/internal/features/contents"
	"github.com/openlore/lorebase/internal/features/notifications"
	"github.com/openlore/lorebase/internal/features/review"
	"github.com/openlore/lorebase/internal/moderation"
	"github.com/openlore/lorebase/internal/pkg/cloudinary"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetupRoutes wires every feature and returns the review runner so main
// can drain it on shutdown.
func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger) *review.Runner {
	// API v1 group
	api := router.Group("/api/v1")

	// Attachment storage. Optional: without credentials uploads are
	// rejected but everything else works.
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if err != nil {
		log.Warn("cloudinary not configured, attachment uploads disabled", zap.Error(err))
		cld = nil
	}

	// Classifier client. A missing API key is a configuration error the
	// orchestrator reports as moderation_service_unavailable per task.
	var classifier review.Moderator
	if c, err := moderation.NewClassifier(cfg.ClassifierAPIKey, cfg.ClassifierBaseURL, log); err != nil {
		log.Warn("classifier not configured, reviews will be unavailable", zap.Error(err))
	} else {
		classifier = c
	}

	// Notification push channel, also optional.
	var pusher notifications.Pusher
	if cfg.FirebaseCredentialsPath != "" {
		if p, err := notifications.NewFCMPusher(context.Background(), cfg.FirebaseCredentialsPath); err != nil {
			log.Warn("firebase messaging not configured, push disabled", zap.Error(err))
		} else {
			pusher = p
		}
	}

	contentsRepo := contents.NewRepository(db)
	notificationsRepo := notifications.NewRepository(db)
	notificationsService := notifications.NewService(notificationsRepo, pusher, log)
	reportsRepo := review.NewRepository(db)

	orchestrator := review.NewOrchestrator(
		contentsRepo,
		reportsRepo,
		classifier,
		extract.New(),
		notificationsService,
		review.DecisionPolicy{ApproveBelow: cfg.ApproveBelow, RejectAbove: cfg.RejectAbove},
		cfg.MaxSegmentLen,
		log,
	)
	runner := review.NewRunner(
		orchestrator,
		cfg.ReviewWorkers,
		review.RetryPolicy{MaxAttempts: cfg.ReviewMaxAttempts, Delay: cfg.ReviewRetryDelay},
		log,
	)

	// Register feature routes
	contents.RegisterRoutes(api, db, cfg, cld)
	notifications.RegisterRoutes(api, db, cfg)
	review.RegisterRoutes(api, runner, reportsRepo)

	return runner
}

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kwsc-digital/efiling-api/api/swagger"
	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/handler"
	internalmiddleware "github.com/kwsc-digital/efiling-api/internal/middleware"
	"github.com/kwsc-digital/efiling-api/internal/models"
	"github.com/kwsc-digital/efiling-api/internal/repository"
	"github.com/kwsc-digital/efiling-api/internal/service"
	"github.com/kwsc-digital/efiling-api/pkg/cache"
	"github.com/kwsc-digital/efiling-api/pkg/config"
	"github.com/kwsc-digital/efiling-api/pkg/database"
	"github.com/kwsc-digital/efiling-api/pkg/export"
	"github.com/kwsc-digital/efiling-api/pkg/logger"
	corsmiddleware "github.com/kwsc-digital/efiling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kwsc-digital/efiling-api/pkg/middleware/requestid"
	"github.com/kwsc-digital/efiling-api/pkg/storage"
)

// @title KW&SC E-Filing API
// @version 0.1.0
// @description File workflow, movement and notification service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("rolecode", dto.ValidRoleCode); err != nil {
			logr.Sugar().Fatalw("failed to register validator", "error", err)
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and rate limiting degraded", "error", err)
		redisClient = nil
	}

	attachmentStore, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	efilingUserRepo := repository.NewEfilingUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	roleGroupRepo := repository.NewRoleGroupRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var roleGroupCache *repository.CacheRepository
	if redisClient != nil {
		roleGroupCache = repository.NewCacheRepository(redisClient)
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logr)
	identitySvc := service.NewIdentityService(efilingUserRepo, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, movementRepo, metricsSvc, cfg.Notifications.Enabled, logr)
	assignmentSvc := service.NewAssignmentService(fileRepo, workflowRepo, efilingUserRepo, roleGroupRepo, notificationSvc, metricsSvc, logr)
	workflowSvc := service.NewWorkflowService(workflowRepo, fileRepo, cfg.Workflow.DefaultSLAHours, logr)
	timelineSvc := service.NewTimelineService(fileRepo, movementRepo, efilingUserRepo, logr)
	fileSvc := service.NewFileService(
		fileRepo,
		identitySvc,
		attachmentStore,
		signer,
		notificationSvc,
		cfg.Workflow.FileNumberPrefix,
		cfg.Attachments.MaxFileSizeBytes,
		logr,
	)
	var roleGroupSvc *service.RoleGroupService
	if roleGroupCache != nil {
		roleGroupSvc = service.NewRoleGroupService(roleGroupRepo, identitySvc, roleGroupCache, cfg.Workflow.RoleGroupCacheTTL, logr)
	} else {
		roleGroupSvc = service.NewRoleGroupService(roleGroupRepo, identitySvc, nil, cfg.Workflow.RoleGroupCacheTTL, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	fileHandler := handler.NewFileHandler(fileSvc, assignmentSvc, timelineSvc, export.NewMovementRegisterPDF())
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	roleGroupHandler := handler.NewRoleGroupHandler(roleGroupSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	if cfg.RateLimit.Enabled {
		secured.Use(internalmiddleware.RateLimit(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/files", fileHandler.List)
	secured.POST("/files", fileHandler.Create)
	secured.GET("/files/:id", fileHandler.Get)
	secured.POST("/files/:id/assign", internalmiddleware.Audit(userRepo, "ASSIGN", "file"), fileHandler.Assign)
	secured.GET("/files/:id/timeline", fileHandler.Timeline)
	if cfg.Workflow.TimelinePDFEnabled {
		secured.GET("/files/:id/timeline/export", fileHandler.ExportTimeline)
	}
	secured.POST("/files/:id/attachments", fileHandler.UploadAttachment)
	secured.GET("/files/:id/attachments/:attachmentId", fileHandler.DownloadAttachment)

	secured.GET("/workflows", workflowHandler.List)
	secured.POST("/workflows", internalmiddleware.Audit(userRepo, "CREATE", "workflow"), workflowHandler.Create)

	secured.GET("/role-groups", roleGroupHandler.List)
	admin := secured.Group("")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.POST("/role-groups", internalmiddleware.Audit(userRepo, "CREATE", "role_group"), roleGroupHandler.Create)
	admin.PUT("/role-groups/:id", internalmiddleware.Audit(userRepo, "UPDATE", "role_group"), roleGroupHandler.Update)

	secured.GET("/notifications", notificationHandler.List)
	secured.PATCH("/notifications/:id/read", notificationHandler.MarkRead)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

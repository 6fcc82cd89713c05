package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/postdeck/postdeck/config"
	"github.com/postdeck/postdeck/controllers"
	"github.com/postdeck/postdeck/middleware"
	"github.com/postdeck/postdeck/storage"
	"github.com/postdeck/postdeck/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, gateway *storage.Gateway) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, gateway)
	mediaController := controllers.NewMediaController(gateway)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/refresh-token", authController.RefreshToken)

	protected := r.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/users/me", authController.Me)
	protected.GET("/posts", postController.ListPosts)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:uuid", postController.UpdatePost)
	protected.DELETE("/posts/:uuid", postController.DeletePost)
	protected.POST("/media/generate-upload-url", mediaController.GenerateUploadURL)
	protected.POST("/media/generate-download-urls", mediaController.GenerateDownloadURLs)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, 404, "route not found")
	})

	return r
}

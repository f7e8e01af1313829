package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quill/internal/config"
	"quill/internal/handlers"
	"quill/internal/middleware"
	"quill/internal/services"
	"quill/internal/store"
)

// New builds the engine with middleware and every API route.
func New(cfg *config.Config, gdb *gorm.DB, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.Server.ClientURLs)))

	st := store.New(gdb, logger)
	RegisterRoutes(r, cfg, gdb, st, services.New(st, logger))
	r.NoRoute(handlers.NotFound)
	return r
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, gdb *gorm.DB, st *store.Store, svc *services.Services) {
	production := cfg.IsProduction()

	// Handlers
	healthHandler := handlers.NewHealthHandler(gdb, cfg.Server.Env)
	postHandler := handlers.NewPostHandler(svc.Posts, production)
	commentHandler := handlers.NewCommentHandler(svc.Comments, production)
	categoryHandler := handlers.NewCategoryHandler(svc.Taxonomy, production)
	tagHandler := handlers.NewTagHandler(svc.Taxonomy, production)
	feedHandler := handlers.NewFeedHandler(svc.Posts, cfg.Server.SiteURL, cfg.Server.SiteName, production)

	// Feeds
	r.GET("/feed.xml", feedHandler.RSS)
	r.GET("/sitemap.xml", feedHandler.Sitemap)

	api := r.Group("/api")
	api.Use(middleware.LoadPrincipal(cfg.Auth.JWTSecret, st))

	api.GET("/health", healthHandler.Health)

	// Posts
	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.GET("/slug/:slug", postHandler.GetBySlug)
		posts.GET("/:id", postHandler.Get)
	}
	postsAuth := api.Group("/posts", middleware.AuthRequired())
	{
		postsAuth.GET("/user/:userId", postHandler.ListByUser)
		postsAuth.POST("", postHandler.Create)
		postsAuth.PUT("/:id", postHandler.Update)
		postsAuth.DELETE("/:id", postHandler.Delete)
	}

	// Comments
	comments := api.Group("/comments")
	{
		comments.GET("/post/:postId", commentHandler.ListForPost)
		comments.GET("/:id/replies", commentHandler.Replies)
		comments.POST("", middleware.RateLimitByIP(cfg.Comments.RateLimit, time.Minute), commentHandler.Add)
	}
	commentsAuth := api.Group("/comments", middleware.AuthRequired())
	{
		commentsAuth.GET("/pending", commentHandler.Pending)
		commentsAuth.PUT("/:id", commentHandler.Update)
		commentsAuth.DELETE("/:id", commentHandler.Delete)
		commentsAuth.PUT("/:id/approve", commentHandler.Approve)
		commentsAuth.PUT("/:id/reject", commentHandler.Reject)
	}

	// Categories
	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/slug/:slug", categoryHandler.GetBySlug)
		categories.GET("/:id", categoryHandler.Get)
		categories.GET("/:id/posts", categoryHandler.Posts)
	}
	categoriesAuth := api.Group("/categories", middleware.AuthRequired())
	{
		categoriesAuth.POST("", categoryHandler.Create)
		categoriesAuth.PUT("/:id", categoryHandler.Update)
		categoriesAuth.DELETE("/:id", categoryHandler.Delete)
	}

	// Tags
	tags := api.Group("/tags")
	{
		tags.GET("", tagHandler.List)
		tags.GET("/slug/:slug", tagHandler.GetBySlug)
		tags.GET("/:id", tagHandler.Get)
	}
	tagsAuth := api.Group("/tags", middleware.AuthRequired())
	{
		tagsAuth.POST("", tagHandler.Create)
		tagsAuth.PUT("/:id", tagHandler.Update)
		tagsAuth.DELETE("/:id", tagHandler.Delete)
	}
}

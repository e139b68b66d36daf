package handler

import (
	"time"

	"ingest-console/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter 注册全部路由
func SetupRouter(r *gin.Engine, handlers *Handlers, mode string) {
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 健康检查不鉴权，供负载均衡与容器探针使用
	r.GET("/api/health", handlers.Health.Check)
	r.GET("/api/health/detailed", handlers.Health.Detailed)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(mode))

	// 触发类接口单独限流
	triggerLimiter := middleware.NewRateLimiter(30, time.Minute)

	registerTagRoutes(api, handlers.Tag)
	registerDataSourceRoutes(api, handlers.DataSource)
	registerRSSRoutes(api, handlers.RSS)
	registerDatasetRoutes(api, handlers.Dataset, handlers.RagFlow)
	registerWebhookRoutes(api, handlers.Webhook, triggerLimiter)
	registerRagFlowRoutes(api, handlers.RagFlow)
	registerSettingRoutes(api, handlers.Setting)
	registerWorkflowRoutes(api, handlers.Workflow, triggerLimiter)

	api.POST("/system/restart", handlers.System.Restart)
}

func registerTagRoutes(api *gin.RouterGroup, h *TagHandler) {
	api.GET("/tags", h.List)
	api.POST("/tags", h.Create)
	api.GET("/tags/:id", h.Get)
	api.PUT("/tags/:id", h.Update)
	api.DELETE("/tags/:id", h.Delete)
	api.GET("/tags/all", h.GetAll)
	api.POST("/tags/batch", h.BatchGetOrCreate)
	api.POST("/tags/match", h.Match)
	api.POST("/tags/by-names", h.GetByNames)
}

func registerDataSourceRoutes(api *gin.RouterGroup, h *DataSourceHandler) {
	api.GET("/datasources", h.List)
	api.POST("/datasources", h.Create)
	api.GET("/datasources/:id", h.Get)
	api.PUT("/datasources/:id", h.Update)
	api.DELETE("/datasources/:id", h.Delete)
}

func registerRSSRoutes(api *gin.RouterGroup, h *RSSHandler) {
	api.GET("/rss", h.List)
	api.POST("/rss", h.Create)
	api.GET("/rss/:id", h.Get)
	api.PUT("/rss/:id", h.Update)
	api.DELETE("/rss/:id", h.Delete)
	api.POST("/rss/:id/mark-fetched", h.MarkFetched)
}

func registerDatasetRoutes(api *gin.RouterGroup, h *DatasetHandler, rf *RagFlowHandler) {
	api.GET("/datasets", h.List)
	api.POST("/datasets", h.Create)
	api.GET("/datasets/:id", h.Get)
	api.PUT("/datasets/:id", h.Update)
	api.DELETE("/datasets/:id", h.Delete)
	api.GET("/datasets/all", h.GetAll)
	api.GET("/datasets/by-name/:name", h.GetByName)
	api.POST("/datasets/by-tag", h.RecommendByTag)
	api.POST("/datasets/article-tags", h.AddArticleTags)
	api.GET("/datasets/article-tags/:document_id", h.GetArticleTags)
	api.GET("/datasets/articles-by-tag/:tag_id", h.GetArticlesByTag)
	api.GET("/datasets/check-url", rf.CheckURL)
}

func registerWebhookRoutes(api *gin.RouterGroup, h *WebhookHandler, limiter *middleware.RateLimiter) {
	api.GET("/webhooks", h.List)
	api.POST("/webhooks", h.Create)
	api.GET("/webhooks/:id", h.Get)
	api.PUT("/webhooks/:id", h.Update)
	api.DELETE("/webhooks/:id", h.Delete)
	api.POST("/webhooks/:id/trigger", middleware.RateLimitMiddleware(limiter), h.Trigger)
	api.GET("/webhooks/:id/history", h.History)
}

func registerRagFlowRoutes(api *gin.RouterGroup, h *RagFlowHandler) {
	api.POST("/ragflow/upload", h.Upload)
	api.POST("/ragflow/upload/with-routing", h.UploadWithRouting)
	api.POST("/ragflow/upload/batch", h.BatchUpload)
	api.GET("/ragflow/check-url", h.CheckURL)
	api.GET("/ragflow/documents", h.ListDocuments)
	api.DELETE("/ragflow/documents/:id", h.DeleteDocument)
	api.GET("/ragflow/datasets", h.ListDatasets)
}

func registerSettingRoutes(api *gin.RouterGroup, h *SettingHandler) {
	api.GET("/settings", h.List)
	api.GET("/settings/:key", h.Get)
	api.PUT("/settings/:key", h.Update)
}

func registerWorkflowRoutes(api *gin.RouterGroup, h *WorkflowHandler, limiter *middleware.RateLimiter) {
	api.GET("/workflows/status", h.Status)
	api.GET("/workflows/:id", h.Get)
	api.POST("/workflows/:id/activate", h.Activate)
	api.POST("/workflows/:id/deactivate", h.Deactivate)
	api.GET("/workflows/executions", h.Executions)
	api.POST("/workflows/trigger/:name", middleware.RateLimitMiddleware(limiter), h.Trigger)
}

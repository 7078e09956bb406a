package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/blog-rbac/config"
	_ "github.com/d60-Lab/blog-rbac/docs"
	"github.com/d60-Lab/blog-rbac/internal/api/handler"
	"github.com/d60-Lab/blog-rbac/internal/api/middleware"
	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/repository"
)

// NewRouter 组装路由。每条受保护路由的流水线：
// Authenticate -> (RequireRoles) -> handler，任一环节拒绝即短路，
// 业务 handler 绝不在被拒请求上执行。
// Update/Delete 的角色/所有权闸门在 service 层（资源存在性先行），
// 路由层只挂认证。
func NewRouter(cfg *config.Config, h *handler.Handler, tokens *auth.TokenManager, users repository.UserRepository) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	// 角色入参在绑定层就收敛到闭合枚举
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
			_, err := auth.ParseRole(fl.Field().String())
			return err == nil
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Trace.Enabled {
		r.Use(otelgin.Middleware("blog-rbac"))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	authn := middleware.Authenticate(tokens, users)

	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", middleware.RateLimit(rate.Limit(5), 10), h.Login)
			authGroup.POST("/logout", authn, h.Logout)
		}

		posts := v1.Group("/posts", authn)
		{
			posts.GET("", middleware.RequireRoles(auth.AllRoles...), h.ListPosts)
			posts.GET("/:id", middleware.RequireRoles(auth.AllRoles...), h.GetPost)
			posts.POST("", middleware.RequireRoles(auth.RoleEditor, auth.RoleAdmin), h.CreatePost)
			posts.PUT("/:id", h.UpdatePost)
			posts.DELETE("/:id", h.DeletePost)
		}

		admin := v1.Group("/users", authn, middleware.RequireRoles(auth.RoleAdmin))
		{
			admin.GET("", h.ListUsers)
			admin.PUT("/:id/role", h.UpdateUserRole)
		}
	}
	return r
}

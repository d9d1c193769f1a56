package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"familytree_go/internal/middleware"
	"familytree_go/internal/response"
	"familytree_go/internal/service"
)

// Services 路由依赖
type Services struct {
	Family      *service.FamilyService
	Auth        *service.Auth
	Gallery     *service.GalleryService
	Logo        *service.LogoService
	Uploads     *service.UploadService
	LoginLimit  *service.RateLimiter
	Metrics     *service.MetricsService
	Gatherer    prometheus.Gatherer
	Logger      *service.Logger
	CORSOrigins []string
}

// NewRouter 创建gin引擎并注册全部路由
func NewRouter(s *Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.Logger), middleware.RequestLogger(s.Logger, s.Metrics))

	if s.Uploads != nil {
		r.Static("/uploads", s.Uploads.Dir())
	}
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1", middleware.CORSMiddleware(s.CORSOrigins))
	api.GET("/", func(c *gin.Context) {
		response.OK(c, "welcome to the family tree api", nil)
	})
	// 预检请求由CORS中间件直接应答
	api.OPTIONS("/*path", func(c *gin.Context) {})

	requireAuth := middleware.AuthMiddleware(s.Auth)
	members := NewMemberHandler(s.Family)
	auth := NewAuthHandler(s.Auth)
	gallery := NewGalleryHandler(s.Gallery)
	logo := NewLogoHandler(s.Logo)

	authGroup := api.Group("/auth")
	{
		login := []gin.HandlerFunc{auth.Login}
		if s.LoginLimit != nil {
			login = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(s.LoginLimit)}, login...)
		}
		authGroup.POST("/login", login...)
		authGroup.POST("/logout", requireAuth, auth.Logout)
	}

	account := api.Group("/account", requireAuth)
	{
		account.GET("/dashboard", auth.Dashboard)
		account.PATCH("/change-password", auth.ChangePassword)
		account.POST("/create-user", middleware.SuperAdminMiddleware(), auth.CreateUser)
	}

	memberGroup := api.Group("/members")
	{
		memberGroup.GET("", members.List)
		memberGroup.GET("/:id", members.Get)
		memberGroup.GET("/:id/family", members.Family)
		memberGroup.POST("", requireAuth, members.Register)
		memberGroup.PATCH("/:id", requireAuth, members.Edit)
		memberGroup.DELETE("/:id", requireAuth, members.Delete)
		memberGroup.POST("/:id/image", requireAuth, members.UploadImage)
	}

	galleryGroup := api.Group("/gallery")
	{
		galleryGroup.GET("", gallery.List)
		galleryGroup.GET("/:id", gallery.Get)
		galleryGroup.POST("", requireAuth, gallery.Create)
		galleryGroup.PATCH("/:id", requireAuth, gallery.Update)
		galleryGroup.DELETE("/:id", requireAuth, gallery.Delete)
	}

	api.GET("/logo", logo.Get)
	api.PUT("/logo", requireAuth, logo.Update)

	return r
}

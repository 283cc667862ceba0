package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-portal/backend/config"
	"campus-portal/backend/internal/api/handler"
	"campus-portal/backend/internal/api/middleware"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/pkg/jwt"
	"campus-portal/backend/pkg/redis"
)

// 请求体上限 1 MiB，本服务没有文件上传接口
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	staffOnly := middleware.RoleAuth(model.RoleTeacher, model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/password", h.Auth.ChangePassword)

			// 用户模块（仅管理员）
			users := authorized.Group("/users")
			{
				users.POST("", adminOnly, h.User.Create)
				users.GET("", staffOnly, h.User.List)
				users.GET("/:id", staffOnly, h.User.Get)
				users.PUT("/:id", adminOnly, h.User.Update)
				users.DELETE("/:id", adminOnly, h.User.Delete)
				users.GET("/:id/signups", staffOnly, h.Signup.ListByUser)
				users.GET("/:id/absences", staffOnly, h.Attendance.GetAbsences)
			}

			// 教室模块
			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Registry.ListRooms)
				rooms.GET("/:id", h.Registry.GetRoom)
				rooms.POST("", adminOnly, h.Registry.CreateRoom)
				rooms.PUT("/:id", adminOnly, h.Registry.UpdateRoom)
				rooms.DELETE("/:id", adminOnly, h.Registry.DeleteRoom)
			}

			// 指导教师模块
			sponsors := authorized.Group("/sponsors")
			{
				sponsors.GET("", h.Registry.ListSponsors)
				sponsors.GET("/:id", h.Registry.GetSponsor)
				sponsors.POST("", adminOnly, h.Registry.CreateSponsor)
				sponsors.PUT("/:id", adminOnly, h.Registry.UpdateSponsor)
				sponsors.DELETE("/:id", adminOnly, h.Registry.DeleteSponsor)
			}

			// 用户组模块
			groups := authorized.Group("/groups")
			{
				groups.GET("", staffOnly, h.Registry.ListGroups)
				groups.GET("/:id", staffOnly, h.Registry.GetGroup)
				groups.POST("", adminOnly, h.Registry.CreateGroup)
				groups.POST("/:id/members", adminOnly, h.Registry.AddGroupMembers)
				groups.DELETE("/:id/members", adminOnly, h.Registry.RemoveGroupMembers)
				groups.DELETE("/:id", adminOnly, h.Registry.DeleteGroup)
			}

			// 活动目录模块
			activities := authorized.Group("/activities")
			{
				activities.GET("", h.Activity.List)
				activities.GET("/:id", h.Activity.Get)
				activities.POST("", adminOnly, h.Activity.Create)
				activities.PUT("/:id", adminOnly, h.Activity.Update)
				activities.DELETE("/:id", adminOnly, h.Activity.Delete)
				activities.POST("/:id/restore", adminOnly, h.Activity.Restore)
			}

			// 节次日历模块
			blocks := authorized.Group("/blocks")
			{
				blocks.GET("", h.Block.List)
				blocks.GET("/next", h.Block.Next)
				blocks.GET("/previous", h.Block.Previous)
				blocks.GET("/:id", h.Block.Get)
				blocks.GET("/:id/scheduled-activities", h.ScheduledActivity.ListByBlock)
				blocks.POST("", adminOnly, h.Block.Create)
				blocks.POST("/batch", adminOnly, h.Block.BatchCreate)
				blocks.PUT("/:id", adminOnly, h.Block.Update)
				blocks.POST("/:id/lock", adminOnly, h.Block.Lock)
				blocks.POST("/:id/unlock", adminOnly, h.Block.Unlock)
				blocks.DELETE("/:id", adminOnly, h.Block.Delete)
				blocks.GET("/:id/pending-passes", adminOnly, h.Signup.ListPendingPasses)
				blocks.POST("/:id/attendance/zero-signup", staffOnly, h.Attendance.BulkZeroSignup)
				blocks.POST("/:id/attendance/cancelled", staffOnly, h.Attendance.BulkCancelled)
			}

			// 排期模块
			scheduled := authorized.Group("/scheduled-activities")
			{
				scheduled.GET("", h.ScheduledActivity.ListByActivity)
				scheduled.GET("/:id", h.ScheduledActivity.Get)
				scheduled.GET("/:id/roster", h.Signup.Roster)
				scheduled.POST("", adminOnly, h.ScheduledActivity.Schedule)
				scheduled.PUT("/:id", adminOnly, h.ScheduledActivity.Update)
				scheduled.POST("/:id/cancel", adminOnly, h.ScheduledActivity.Cancel)
				scheduled.POST("/:id/uncancel", adminOnly, h.ScheduledActivity.Uncancel)
				scheduled.DELETE("/:id", adminOnly, h.ScheduledActivity.Delete)
				scheduled.POST("/:id/attendance", staffOnly, h.Attendance.Take)
			}

			// 报名模块
			signups := authorized.Group("/signups")
			{
				signups.POST("", h.Signup.Add)
				signups.GET("/my", h.Signup.My)
				signups.GET("/:id", h.Signup.Get)
				signups.DELETE("/:id", h.Signup.Remove)
				signups.POST("/:id/pass", adminOnly, h.Signup.DecidePass)
				signups.DELETE("/:id/absence", staffOnly, h.Attendance.ClearAbsence)
			}

			// 考勤模块
			absences := authorized.Group("/absences")
			{
				absences.GET("/my", h.Attendance.MyAbsences)
				absences.POST("/archive", adminOnly, h.Attendance.ArchiveAbsences)
			}

			// 批量操作模块（仅管理员）
			bulk := authorized.Group("/bulk", adminOnly)
			{
				bulk.POST("/group-signup", h.Bulk.GroupSignup)
				bulk.POST("/distribute", h.Bulk.Distribute)
				bulk.POST("/transfer", h.Bulk.Transfer)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.CountUnread)
				notifications.POST("/read", h.Notification.MarkRead)
				notifications.GET("/preference", h.Notification.GetPreference)
				notifications.PUT("/preference", h.Notification.UpdatePreference)
				notifications.DELETE("/:id", h.Notification.Delete)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/roster", staffOnly, h.Export.ExportRoster)
				export.GET("/calendar", h.Export.ExportMyCalendar)
			}
		}
	}

	return r
}

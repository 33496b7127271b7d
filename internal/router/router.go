package router

import (
	"teamtrack/internal/attendance"
	"teamtrack/internal/config"
	"teamtrack/internal/handler"
	"teamtrack/internal/middleware"
	"teamtrack/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, sweeper *attendance.Sweeper, pub notify.Publisher) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	// register/login do not require a session
	authHandler := handler.NewAuthHandler(db, cfg.Security.BcryptCost,
		cfg.Session.ExpireHours, cfg.Session.CookieName, cfg.Session.Secure)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(db, cfg.Session.CookieName),
		middleware.ActivityMiddleware(db),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)

	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost, cfg.Session.CookieName))
	protected.POST("/profile/deactivate", handler.DeactivateAccount(db))

	wsHandler := handler.NewWorkspaceHandler(db, cfg.Invite.Secret, cfg.Invite.ExpireHours, pub)
	protected.POST("/workspaces", wsHandler.Create)
	protected.GET("/workspaces", wsHandler.ListMine)
	protected.POST("/workspaces/join", wsHandler.AcceptInvite)
	protected.GET("/workspaces/:id", wsHandler.Get)
	protected.PUT("/workspaces/:id", wsHandler.Update)
	protected.DELETE("/workspaces/:id", wsHandler.Delete)
	protected.GET("/workspaces/:id/members", wsHandler.ListMembers)
	protected.PUT("/workspaces/:id/members/:user_id", wsHandler.UpdateMemberRole)
	protected.DELETE("/workspaces/:id/members/:user_id", wsHandler.RemoveMember)
	protected.POST("/workspaces/:id/invites", wsHandler.CreateInvite)

	boardHandler := handler.NewBoardHandler(db)
	protected.POST("/workspaces/:id/boards", boardHandler.Create)
	protected.GET("/workspaces/:id/boards", boardHandler.List)
	protected.PUT("/workspaces/:id/boards/:board_id", boardHandler.Update)
	protected.DELETE("/workspaces/:id/boards/:board_id", boardHandler.Delete)

	taskHandler := handler.NewTaskHandler(db, cfg.App.PageSize, pub)
	protected.POST("/workspaces/:id/tasks", taskHandler.Create)
	protected.GET("/workspaces/:id/tasks", taskHandler.List)
	protected.GET("/workspaces/:id/tasks/:task_id", taskHandler.Get)
	protected.PUT("/workspaces/:id/tasks/:task_id", taskHandler.Update)
	protected.PUT("/workspaces/:id/tasks/:task_id/status", taskHandler.UpdateStatus)
	protected.PUT("/workspaces/:id/tasks/:task_id/assignee", taskHandler.Assign)
	protected.DELETE("/workspaces/:id/tasks/:task_id", taskHandler.Delete)

	bugHandler := handler.NewBugHandler(db, cfg.App.PageSize)
	protected.POST("/workspaces/:id/bugs", bugHandler.Create)
	protected.GET("/workspaces/:id/bugs", bugHandler.List)
	protected.GET("/workspaces/:id/bugs/:bug_id", bugHandler.Get)
	protected.PUT("/workspaces/:id/bugs/:bug_id", bugHandler.Update)
	protected.PUT("/workspaces/:id/bugs/:bug_id/status", bugHandler.UpdateStatus)
	protected.DELETE("/workspaces/:id/bugs/:bug_id", bugHandler.Delete)

	reportHandler := handler.NewReportHandler(db, cfg.App.PageSize, pub)
	protected.POST("/workspaces/:id/reports", reportHandler.Submit)
	protected.GET("/workspaces/:id/reports", reportHandler.ListWorkspace)
	protected.GET("/workspaces/:id/reports/export", reportHandler.ExportXLSX)
	protected.GET("/reports/me", reportHandler.ListMine)

	attHandler := handler.NewAttendanceHandler(db, sweeper, cfg.App.PageSize)
	protected.POST("/attendance/clock-in", attHandler.ClockIn)
	protected.POST("/attendance/clock-out", attHandler.ClockOut)
	protected.GET("/attendance/me", attHandler.ListMine)
	protected.GET("/attendance", attHandler.ListAll)
	protected.GET("/attendance/export", attHandler.ExportXLSX)
	protected.POST("/attendance/sweep", attHandler.Sweep)

	activityHandler := handler.NewActivityHandler(db, cfg.App.PageSize)
	protected.GET("/activity", activityHandler.List)

	return r
}

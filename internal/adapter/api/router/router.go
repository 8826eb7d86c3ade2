package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
	"taskcommadmin/internal/adapter/api/middleware"
)

// Setup registers the admin API. Every /v1/admin route requires an admin.
func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, wsHandler *handler.WebSocketHandler, extra ...echo.MiddlewareFunc) {
	SetupHealthRouter(e)

	admin := e.Group("/v1/admin", extra...)
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	SetupAuthRouter(admin)
	SetupUserRouter(admin)
	SetupInstructionRouter(admin)
	SetupTaskRouter(admin)
	SetupChatRouter(admin)
	SetupSearchRouter(admin)
	SetupWebSocketRouter(admin, wsHandler)
}

package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

func SetupAuthRouter(admin *echo.Group) {
	authHandler := handler.GetAuthHandler()
	admin.GET("/me", authHandler.Me)
}

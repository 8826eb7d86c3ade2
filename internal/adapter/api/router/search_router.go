package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

func SetupSearchRouter(admin *echo.Group) {
	admin.GET("/search", handler.GetSearchHandler().Search)
}

package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
	"taskcommadmin/internal/infrastructure/metrics"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

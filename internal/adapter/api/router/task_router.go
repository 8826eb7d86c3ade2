package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

func SetupTaskRouter(admin *echo.Group) {
	taskHandler := handler.GetTaskHandler()

	tasks := admin.Group("/tasks")
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
}

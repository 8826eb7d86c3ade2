package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

func SetupUserRouter(admin *echo.Group) {
	userHandler := handler.GetUserHandler()

	users := admin.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeactivateUser)
	users.GET("/:id/instructions", userHandler.GetUserInstructions)
	users.GET("/:id/tasks", userHandler.GetUserTasks)
}

package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

func SetupInstructionRouter(admin *echo.Group) {
	instructionHandler := handler.GetInstructionHandler()

	instructions := admin.Group("/instructions")
	instructions.GET("", instructionHandler.ListInstructions)
	instructions.GET("/:id", instructionHandler.GetInstruction)
	instructions.PATCH("/:id/status", instructionHandler.UpdateStatus)
	instructions.GET("/:id/tasks", instructionHandler.ListTasks)
	instructions.POST("/:id/tasks", instructionHandler.CreateTask)
}

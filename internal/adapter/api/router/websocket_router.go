package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the chat session socket of a task.
func SetupWebSocketRouter(admin *echo.Group, wsHandler *handler.WebSocketHandler) {
	admin.GET("/tasks/:id/chat/ws", wsHandler.ChatSession)
}

package router

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/handler"
)

func SetupChatRouter(admin *echo.Group) {
	chatHandler := handler.GetChatHandler()

	messages := admin.Group("/tasks/:id/messages")
	messages.GET("", chatHandler.GetMessages)
	messages.POST("", chatHandler.SendMessage)
	messages.GET("/unread", chatHandler.UnreadCount)
	messages.PATCH("/:messageId", chatHandler.EditMessage)
	messages.DELETE("/:messageId", chatHandler.DeleteMessage)
	messages.PUT("/:messageId/read", chatHandler.MarkRead)

	admin.GET("/messages/:messageId/diagnostics", chatHandler.Diagnostics)
}

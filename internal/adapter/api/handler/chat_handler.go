package handler

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/middleware"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/response"
)

type ChatHandler struct {
	chatUseCase        *usecase.ChatUseCase
	diagnosticsUseCase *usecase.DiagnosticsUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, diagnosticsUseCase *usecase.DiagnosticsUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:        chatUseCase,
		diagnosticsUseCase: diagnosticsUseCase,
	}
}

type sendMessageRequest struct {
	Text     string  `json:"text" validate:"required_without=MediaURL,max=4000"`
	MediaURL *string `json:"media_url" validate:"omitempty,url"`
	FileType *string `json:"file_type" validate:"omitempty,oneof=text image document"`
	FileName *string `json:"file_name" validate:"omitempty,max=255"`
	FileSize *int64  `json:"file_size" validate:"omitempty,min=0"`
}

type editMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.chatUseCase.FetchMessages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), middleware.IdentityFrom(c), usecase.SendMessageInput{
		TaskID:   c.Param("id"),
		Text:     req.Text,
		MediaURL: req.MediaURL,
		FileType: req.FileType,
		FileName: req.FileName,
		FileSize: req.FileSize,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) EditMessage(c echo.Context) error {
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	taskID, messageID := c.Param("id"), c.Param("messageId")
	if err := h.chatUseCase.EditMessage(c.Request().Context(), middleware.IdentityFrom(c), taskID, messageID, req.Text); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message":    "Message updated",
		"message_id": messageID,
	})
}

func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	taskID, messageID := c.Param("id"), c.Param("messageId")
	if err := h.chatUseCase.DeleteMessage(c.Request().Context(), taskID, messageID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message":    "Message deleted",
		"message_id": messageID,
	})
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	h.chatUseCase.MarkRead(c.Request().Context(), c.Param("id"), c.Param("messageId"))
	return response.Success(c, map[string]string{
		"message_id": c.Param("messageId"),
	})
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	count := h.chatUseCase.CountUnread(c.Request().Context(), c.Param("id"))
	return response.Success(c, map[string]interface{}{
		"task_id": c.Param("id"),
		"unread":  count,
	})
}

func (h *ChatHandler) Diagnostics(c echo.Context) error {
	report, err := h.diagnosticsUseCase.DiagnoseMessage(c.Request().Context(), middleware.IdentityFrom(c), c.Param("messageId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, report)
}

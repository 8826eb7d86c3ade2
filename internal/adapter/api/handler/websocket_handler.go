package handler

import (
	"context"
	stderrors "errors"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/middleware"
	"taskcommadmin/internal/chatsync"
	"taskcommadmin/internal/domain/entity"
	ws "taskcommadmin/internal/infrastructure/websocket"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
	"taskcommadmin/pkg/response"
)

type WebSocketHandler struct {
	wsManager   *ws.Manager
	chatUseCase *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:   wsManager,
		chatUseCase: chatUseCase,
	}
}

// ChatSession upgrades the request and streams the chat of task :id. Every
// rendered view is pushed as a messages frame; commands read from the
// socket are answered with ack or error frames.
func (h *WebSocketHandler) ChatSession(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}
	taskID := c.Param("id")
	if taskID == "" {
		return response.Error(c, errors.BadRequest("Task id is required", nil))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade for task %s failed: %v", taskID, err)
		return nil
	}

	client := ws.NewClient(conn, identity.UserID, taskID)
	h.wsManager.Register(client)

	session, release := h.chatUseCase.OpenSession(taskID)
	views, unsubscribe := session.Subscribe()
	defer func() {
		unsubscribe()
		release()
	}()

	go client.WritePump()
	go forwardViews(client, views)

	client.ReadPump(h.wsManager, func(message []byte) {
		h.handleCommand(client, identity, message)
	})
	return nil
}

func forwardViews(client *ws.Client, views <-chan chatsync.View) {
	for {
		select {
		case view, ok := <-views:
			if !ok {
				client.Close()
				return
			}
			client.Enqueue(ws.MessagesFrame(view.TaskID, view.Messages, view.Error))
		case <-client.Done():
			return
		}
	}
}

func (h *WebSocketHandler) handleCommand(client *ws.Client, identity *entity.Identity, message []byte) {
	cmd, err := ws.DecodeCommand(message)
	if err != nil {
		client.Enqueue(ws.ErrorFrame(cmd.Ref, errors.CodeBadRequest, err.Error()))
		return
	}

	if cmd.Type == ws.CommandPing {
		client.Enqueue(ws.Encode(ws.ServerMessage{Type: ws.MessageTypePong, Ref: cmd.Ref}))
		return
	}

	// Mutations wait for remote verification, so they run off the read loop.
	go func() {
		ctx := context.Background()
		var sent *entity.ChatMessage
		var err error

		switch cmd.Type {
		case ws.CommandSend:
			sent, err = h.chatUseCase.SendMessage(ctx, identity, usecase.SendMessageInput{
				TaskID:   client.TaskID,
				Text:     cmd.Text,
				MediaURL: cmd.MediaURL,
				FileType: cmd.FileType,
				FileName: cmd.FileName,
				FileSize: cmd.FileSize,
			})
		case ws.CommandEdit:
			err = h.chatUseCase.EditMessage(ctx, identity, client.TaskID, cmd.MessageID, cmd.Text)
		case ws.CommandDelete:
			err = h.chatUseCase.DeleteMessage(ctx, client.TaskID, cmd.MessageID)
		case ws.CommandRead:
			h.chatUseCase.MarkRead(ctx, client.TaskID, cmd.MessageID)
		}

		if err != nil {
			client.Enqueue(ws.ErrorFrame(cmd.Ref, errorCode(err), errors.Message(err)))
			return
		}
		client.Enqueue(ws.AckFrame(cmd.Ref, sent))
	}()
}

func errorCode(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

package handler

import (
	"taskcommadmin/internal/usecase"
)

var (
	authHandler        *AuthHandler
	userHandler        *UserHandler
	instructionHandler *InstructionHandler
	taskHandler        *TaskHandler
	chatHandler        *ChatHandler
	searchHandler      *SearchHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	instructionUseCase *usecase.InstructionUseCase,
	taskUseCase *usecase.TaskUseCase,
	chatUseCase *usecase.ChatUseCase,
	searchUseCase *usecase.SearchUseCase,
	diagnosticsUseCase *usecase.DiagnosticsUseCase,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	instructionHandler = NewInstructionHandler(instructionUseCase, taskUseCase)
	taskHandler = NewTaskHandler(taskUseCase)
	chatHandler = NewChatHandler(chatUseCase, diagnosticsUseCase)
	searchHandler = NewSearchHandler(searchUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetInstructionHandler() *InstructionHandler {
	return instructionHandler
}

func GetTaskHandler() *TaskHandler {
	return taskHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetSearchHandler() *SearchHandler {
	return searchHandler
}

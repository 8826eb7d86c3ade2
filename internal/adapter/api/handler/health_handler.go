package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SessionCounter reports the number of running chat sessions.
type SessionCounter interface {
	OpenSessions() int
}

type HealthHandler struct {
	backend  string
	sessions SessionCounter
	started  time.Time
}

var healthHandler *HealthHandler

func NewHealthHandler(backend string, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{
		backend:  backend,
		sessions: sessions,
		started:  time.Now(),
	}
}

func SetupHealthHandler(backend string, sessions SessionCounter) {
	healthHandler = NewHealthHandler(backend, sessions)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":  "ok",
		"backend": h.backend,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	}
	if h.sessions != nil {
		body["chat_sessions"] = h.sessions.OpenSessions()
	}
	return c.JSON(http.StatusOK, body)
}

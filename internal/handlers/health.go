package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Blizzyboii/calhacks/internal/orchestrator"
)

type HealthHandler struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

func NewHealthHandler(log *slog.Logger, orch *orchestrator.Orchestrator) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{
		orch:   orch,
		logger: log.With(slog.String("handler", "health")),
	}
}

func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.GET("/health", h.Health)
	e.HEAD("/health", h.HealthHead)
}

func (h *HealthHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":              "ok",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"activeConversations": h.orch.ActiveConversations(),
	})
}

func (h *HealthHandler) HealthHead(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

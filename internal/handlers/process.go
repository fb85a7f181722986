package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Blizzyboii/calhacks/internal/conversation"
	"github.com/Blizzyboii/calhacks/internal/media"
	"github.com/Blizzyboii/calhacks/internal/orchestrator"
)

// ProcessHandler exposes the message pipeline over HTTP.
type ProcessHandler struct {
	orch    *orchestrator.Orchestrator
	timeout time.Duration
	logger  *slog.Logger
}

type processContext struct {
	ChannelID      string             `json:"channelId"`
	UserID         string             `json:"userId"`
	ConversationID string             `json:"conversationId" validate:"required"`
	AuthToken      string             `json:"authToken"`
	Media          []media.Attachment `json:"media"`
}

type processPayload struct {
	Message   string         `json:"message" validate:"required"`
	Context   processContext `json:"context" validate:"required"`
	Timestamp string         `json:"timestamp"`
}

type processResponse struct {
	Response       string              `json:"response"`
	Memory         conversation.Window `json:"memory"`
	ConversationID string              `json:"conversationId"`
}

type memoryResponse struct {
	ConversationID string              `json:"conversationId"`
	Memory         conversation.Window `json:"memory"`
	MessageCount   int                 `json:"messageCount"`
}

// NewProcessHandler creates a ProcessHandler. timeout bounds one full
// pipeline run including all of its sequential network calls.
func NewProcessHandler(log *slog.Logger, orch *orchestrator.Orchestrator, timeout time.Duration) *ProcessHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessHandler{
		orch:    orch,
		timeout: timeout,
		logger:  log.With(slog.String("handler", "process")),
	}
}

func (h *ProcessHandler) Register(e *echo.Echo) {
	e.POST("/api/process", h.Process)
	e.POST("/api/store", h.Store)
	e.GET("/api/memory/:conversation_id", h.GetMemory)
}

// Process runs one message through the pipeline and returns the response
// with the updated window.
func (h *ProcessHandler) Process(c echo.Context) error {
	payload, err := h.bind(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.orch.Process(ctx, toRequest(payload))
	if err != nil {
		var perr *orchestrator.PipelineError
		if errors.As(err, &perr) {
			h.logger.Error("pipeline failed",
				slog.String("conversation_id", payload.Context.ConversationID),
				slog.String("stage", perr.Stage),
				slog.String("error", perr.Error()))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":   "failed to process message",
				"details": perr.Details,
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, processResponse{
		Response:       result.Response,
		Memory:         result.Memory,
		ConversationID: result.ConversationID,
	})
}

// Store records a message in both memory tiers without generating a reply.
func (h *ProcessHandler) Store(c echo.Context) error {
	payload, err := h.bind(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()
	h.orch.StoreOnly(ctx, toRequest(payload))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetMemory returns the short-term window for one conversation.
func (h *ProcessHandler) GetMemory(c echo.Context) error {
	conversationID := c.Param("conversation_id")
	if conversationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation_id is required")
	}
	window := h.orch.Window(conversationID)
	return c.JSON(http.StatusOK, memoryResponse{
		ConversationID: conversationID,
		Memory:         window,
		MessageCount:   len(window),
	})
}

func (h *ProcessHandler) bind(c echo.Context) (processPayload, error) {
	var payload processPayload
	if err := c.Bind(&payload); err != nil {
		return payload, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return payload, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return payload, nil
}

func toRequest(payload processPayload) orchestrator.Request {
	return orchestrator.Request{
		Message:        payload.Message,
		ConversationID: payload.Context.ConversationID,
		ChannelID:      payload.Context.ChannelID,
		UserID:         payload.Context.UserID,
		Timestamp:      parseTimestamp(payload.Timestamp),
		Attachments:    payload.Context.Media,
		AuthToken:      payload.Context.AuthToken,
	}
}

// parseTimestamp reads the platform's seconds-with-fraction event timestamp
// (e.g. "1718031600.000200"). Anything unparsable maps to the zero time and
// the pipeline substitutes the current time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	secStr, fracStr, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}
	}
	var nsec int64
	if fracStr != "" {
		if len(fracStr) > 9 {
			fracStr = fracStr[:9]
		}
		frac, err := strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return time.Time{}
		}
		for i := len(fracStr); i < 9; i++ {
			frac *= 10
		}
		nsec = frac
	}
	return time.Unix(sec, nsec).UTC()
}

package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Blizzyboii/calhacks/internal/config"
	"github.com/Blizzyboii/calhacks/internal/conversation"
	"github.com/Blizzyboii/calhacks/internal/media"
	"github.com/Blizzyboii/calhacks/internal/memory"
	"github.com/Blizzyboii/calhacks/internal/providers"
)

const describePrompt = "Describe the visual content of this message in one or two short sentences."

// Request is one inbound message to run through the pipeline.
type Request struct {
	Message        string
	ConversationID string
	ChannelID      string
	UserID         string
	Timestamp      time.Time
	Attachments    []media.Attachment
	// AuthToken is the caller-supplied bearer token for fetching private
	// attachment bytes from the chat platform.
	AuthToken string
}

// Result is the terminal success state of one pipeline run.
type Result struct {
	Response       string
	Memory         conversation.Window
	ConversationID string
}

// Orchestrator sequences the message pipeline: short-term memory, media
// analysis, the long-term side-channel, provider routing and dispatch.
// Enhancement stages degrade silently; only dispatch and response parsing
// can fail a request.
type Orchestrator struct {
	logger       *slog.Logger
	store        conversation.Store
	resolver     *media.Resolver
	gateway      *memory.Gateway
	router       *providers.Router
	formatter    *providers.Formatter
	client       *providers.Client
	systemPrompt string
	botToken     string
}

func New(
	log *slog.Logger,
	cfg config.Config,
	store conversation.Store,
	resolver *media.Resolver,
	gateway *memory.Gateway,
	router *providers.Router,
	formatter *providers.Formatter,
	client *providers.Client,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	systemPrompt := cfg.LLM.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}
	return &Orchestrator{
		logger:       log.With(slog.String("service", "orchestrator")),
		store:        store,
		resolver:     resolver,
		gateway:      gateway,
		router:       router,
		formatter:    formatter,
		client:       client,
		systemPrompt: systemPrompt,
		botToken:     cfg.Slack.BotToken,
	}
}

// Process runs one message through the full pipeline and returns the
// generated response with the updated window. Errors are always
// *PipelineError values.
func (o *Orchestrator) Process(ctx context.Context, req Request) (Result, error) {
	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	logger := o.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("conversation_id", req.ConversationID))

	window := o.store.Get(req.ConversationID)

	bundle, visualSummary := o.analyzeMedia(ctx, req, logger)

	o.gateway.Store(ctx, memory.Record{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Text:           req.Message,
		Timestamp:      timestamp,
		VisualSummary:  visualSummary,
	})
	fragments := o.gateway.Query(ctx, req.Message)

	systemPrompt := o.buildSystemPrompt(fragments)

	sel := o.router.Select(bundle.HasMedia)
	providerReq, err := o.formatter.Format(sel, providers.Input{
		SystemPrompt: systemPrompt,
		History:      window,
		UserText:     req.Message,
		Media:        bundle,
	})
	if err != nil {
		return Result{}, pipelineErr(StageRouteAndFormat, "could not build provider request", err)
	}

	respBody, err := o.client.Do(ctx, providerReq)
	if err != nil {
		return Result{}, pipelineErr(StageDispatch, "provider call failed", err)
	}

	text, err := providers.ParseResponse(sel.Family, respBody)
	if err != nil {
		return Result{}, pipelineErr(StageParseResponse, "provider returned an unexpected response shape", err)
	}

	updated := o.store.Append(req.ConversationID,
		conversation.Turn{Role: conversation.RoleUser, Content: req.Message, Timestamp: timestamp},
		conversation.Turn{Role: conversation.RoleAssistant, Content: text, Timestamp: time.Now()},
	)

	logger.Info("request processed",
		slog.String("model", sel.Model),
		slog.Bool("has_media", bundle.HasMedia),
		slog.Int("long_term_fragments", len(fragments)),
		slog.Int("window_len", len(updated)))

	return Result{
		Response:       text,
		Memory:         updated,
		ConversationID: req.ConversationID,
	}, nil
}

// StoreOnly records a message in both memory tiers without generating a
// response. Media is still analyzed so the long-term record keeps its
// visual summary.
func (o *Orchestrator) StoreOnly(ctx context.Context, req Request) {
	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	logger := o.logger.With(slog.String("conversation_id", req.ConversationID))
	_, visualSummary := o.analyzeMedia(ctx, req, logger)
	o.store.Append(req.ConversationID, conversation.Turn{
		Role:      conversation.RoleUser,
		Content:   req.Message,
		Timestamp: timestamp,
	})
	o.gateway.Store(ctx, memory.Record{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Text:           req.Message,
		Timestamp:      timestamp,
		VisualSummary:  visualSummary,
	})
}

// Window returns the current short-term window for a conversation.
func (o *Orchestrator) Window(conversationID string) conversation.Window {
	return o.store.Get(conversationID)
}

// ActiveConversations returns how many conversations hold a window.
func (o *Orchestrator) ActiveConversations() int {
	return o.store.Count()
}

// analyzeMedia resolves attachments and text links, then makes a best-effort
// vision call to summarize embedded images for the long-term record. Any
// failure here degrades to an empty summary.
func (o *Orchestrator) analyzeMedia(ctx context.Context, req Request, logger *slog.Logger) (media.Bundle, string) {
	token := req.AuthToken
	if token == "" {
		token = o.botToken
	}
	bundle := o.resolver.Resolve(ctx, media.Message{
		Text:        req.Message,
		Attachments: req.Attachments,
		AuthToken:   token,
	})
	if len(bundle.Images) == 0 {
		return bundle, ""
	}

	summary, err := o.describeImages(ctx, bundle)
	if err != nil {
		logger.Warn("visual analysis degraded", slog.String("error", err.Error()))
		return bundle, ""
	}
	return bundle, summary
}

func (o *Orchestrator) describeImages(ctx context.Context, bundle media.Bundle) (string, error) {
	sel := o.router.Select(true)
	providerReq, err := o.formatter.Format(sel, providers.Input{
		UserText: describePrompt,
		Media:    bundle,
	})
	if err != nil {
		return "", err
	}
	respBody, err := o.client.Do(ctx, providerReq)
	if err != nil {
		return "", err
	}
	return providers.ParseResponse(sel.Family, respBody)
}

// buildSystemPrompt appends long-term fragments to the base prompt. The
// fragments keep the store's relevance order and are never parsed.
func (o *Orchestrator) buildSystemPrompt(fragments []string) string {
	if len(fragments) == 0 {
		return o.systemPrompt
	}
	var b strings.Builder
	b.WriteString(o.systemPrompt)
	b.WriteString("\n\nRelevant information from previous conversations:\n")
	for _, fragment := range fragments {
		b.WriteString("- ")
		b.WriteString(fragment)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

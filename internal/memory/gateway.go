package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Blizzyboii/calhacks/internal/config"
	"github.com/Blizzyboii/calhacks/internal/media"
)

const searchLimit = 5

// Gateway talks to the external long-term memory service. It is an optional
// enhancement: without credentials every operation degrades to a no-op, and
// no failure it encounters ever reaches a caller as an error.
type Gateway struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	agentID    string
	enabled    bool
}

// NewGateway creates the long-term memory client. A missing API key disables
// the gateway for the process lifetime, with a single startup warning.
func NewGateway(log *slog.Logger, cfg config.MemoryConfig) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("service", "memory"))
	enabled := cfg.APIKey != "" && cfg.BaseURL != ""
	if !enabled {
		log.Warn("long-term memory disabled, missing api key or base url")
	}
	return &Gateway{
		logger:     log,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		agentID:    cfg.AgentID,
		enabled:    enabled,
	}
}

// Enabled reports whether the external store is configured.
func (g *Gateway) Enabled() bool {
	return g.enabled
}

// Store forwards one record to the external store. Fire-and-forget: the call
// returns immediately and the write runs detached from the caller's
// cancellation. Failures are logged, never surfaced.
func (g *Gateway) Store(ctx context.Context, rec Record) {
	if !g.enabled {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		if err := g.store(detached, rec); err != nil {
			g.logger.Warn("long-term store failed",
				slog.String("conversation_id", rec.ConversationID),
				slog.String("error", err.Error()))
		}
	}()
}

func (g *Gateway) store(ctx context.Context, rec Record) error {
	metadata := map[string]string{
		"conversation_id": rec.ConversationID,
		"user_id":         rec.UserID,
		"timestamp":       rec.Timestamp.UTC().Format(time.RFC3339),
	}
	if rec.VisualSummary != "" {
		metadata["visual_summary"] = rec.VisualSummary
	}
	body, err := json.Marshal(storeRequest{
		Messages: []storeMessage{{Role: "user", Content: rec.Text}},
		AgentID:  g.agentID,
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal store request: %w", err)
	}
	_, err = g.post(ctx, "/v1/memories/", body)
	return err
}

// Query asks the store for fragments relevant to text. It never fails: any
// misconfiguration, transport error, or bad payload yields an empty slice.
// Fragment order follows the store's own relevance ranking.
func (g *Gateway) Query(ctx context.Context, text string) []string {
	if !g.enabled {
		return nil
	}
	body, err := json.Marshal(searchRequest{
		Query:   text,
		AgentID: g.agentID,
		Limit:   searchLimit,
	})
	if err != nil {
		g.logger.Warn("long-term query failed", slog.String("error", err.Error()))
		return nil
	}
	respBody, err := g.post(ctx, "/v1/memories/search/", body)
	if err != nil {
		g.logger.Warn("long-term query failed", slog.String("error", err.Error()))
		return nil
	}
	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		g.logger.Warn("long-term query returned bad payload", slog.String("error", err.Error()))
		return nil
	}
	fragments := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if result.Memory != "" {
			fragments = append(fragments, result.Memory)
		}
	}
	return fragments
}

func (g *Gateway) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+g.apiKey)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call memory store: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := media.ReadAllWithLimit(resp.Body, media.MaxAssetBytes)
	if err != nil {
		return nil, fmt.Errorf("read memory response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("memory store returned status %d", resp.StatusCode)
	}
	return respBody, nil
}

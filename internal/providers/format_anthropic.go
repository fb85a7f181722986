package providers

import (
	"encoding/json"
	"fmt"

	"github.com/Blizzyboii/calhacks/internal/conversation"
)

const anthropicAPIVersion = "2023-06-01"

type anthropicRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
	Messages  []anthropicMsg `json:"messages"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []anthropicBlock
}

type anthropicBlock struct {
	Type   string                `json:"type"` // "text" | "image"
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"` // always "base64"
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// formatAnthropic builds the separated-system shape: the prompt rides in the
// top-level system field, and the message list keeps only user-role turns.
// Images must be base64-embedded; URL-only references are dropped.
func (f *Formatter) formatAnthropic(sel Selection, in Input) (Request, error) {
	msgs := make([]anthropicMsg, 0, len(in.History)+1)
	for _, turn := range in.History {
		if turn.Role != conversation.RoleUser {
			continue
		}
		msgs = append(msgs, anthropicMsg{Role: conversation.RoleUser, Content: turn.Content})
	}

	blocks := make([]anthropicBlock, 0, len(in.Media.Images)+1)
	for _, img := range in.Media.Images {
		mimeType, payload, ok := splitDataURI(img.URL)
		if !ok {
			// No URL-based image support on this wire shape.
			continue
		}
		blocks = append(blocks, anthropicBlock{
			Type: "image",
			Source: &anthropicImageSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      payload,
			},
		})
	}
	if len(blocks) > 0 {
		blocks = append(blocks, anthropicBlock{Type: "text", Text: in.UserText})
		msgs = append(msgs, anthropicMsg{Role: conversation.RoleUser, Content: blocks})
	} else {
		msgs = append(msgs, anthropicMsg{Role: conversation.RoleUser, Content: in.UserText})
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     sel.Model,
		MaxTokens: f.cfg.MaxTokens,
		System:    in.SystemPrompt,
		Messages:  msgs,
	})
	if err != nil {
		return Request{}, fmt.Errorf("marshal anthropic request: %w", err)
	}
	return Request{
		URL: f.cfg.Anthropic.BaseURL + "/messages",
		Headers: map[string]string{
			"Content-Type":      "application/json",
			"x-api-key":         f.cfg.Anthropic.APIKey,
			"anthropic-version": anthropicAPIVersion,
		},
		Body:   body,
		Family: FamilyAnthropic,
		Model:  sel.Model,
	}, nil
}

func parseAnthropicResponse(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic response has no content blocks")
	}
	return resp.Content[0].Text, nil
}

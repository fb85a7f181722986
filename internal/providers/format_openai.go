package providers

import (
	"encoding/json"
	"fmt"

	"github.com/Blizzyboii/calhacks/internal/conversation"
)

type oaiRequest struct {
	Model     string   `json:"model"`
	Messages  []oaiMsg `json:"messages"`
	MaxTokens int      `json:"max_tokens,omitempty"`
}

type oaiMsg struct {
	Role string `json:"role"`
	// Content is a plain string for text-only messages and a []oaiSegment
	// for multimodal ones.
	Content any `json:"content"`
}

type oaiSegment struct {
	Type     string       `json:"type"` // "text" | "image_url"
	Text     string       `json:"text,omitempty"`
	ImageURL *oaiImageURL `json:"image_url,omitempty"`
}

type oaiImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type oaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// formatOpenAI builds the flat message list: system role first, then the
// history verbatim, then the user message. With media present the user
// message content becomes a segment array with one image_url per image.
func (f *Formatter) formatOpenAI(sel Selection, in Input) (Request, error) {
	msgs := make([]oaiMsg, 0, len(in.History)+2)
	if in.SystemPrompt != "" {
		msgs = append(msgs, oaiMsg{Role: conversation.RoleSystem, Content: in.SystemPrompt})
	}
	for _, turn := range in.History {
		msgs = append(msgs, oaiMsg{Role: turn.Role, Content: turn.Content})
	}

	if len(in.Media.Images) > 0 {
		segments := make([]oaiSegment, 0, len(in.Media.Images)+1)
		segments = append(segments, oaiSegment{Type: "text", Text: in.UserText})
		for _, img := range in.Media.Images {
			segments = append(segments, oaiSegment{
				Type:     "image_url",
				ImageURL: &oaiImageURL{URL: img.URL, Detail: "high"},
			})
		}
		msgs = append(msgs, oaiMsg{Role: conversation.RoleUser, Content: segments})
	} else {
		msgs = append(msgs, oaiMsg{Role: conversation.RoleUser, Content: in.UserText})
	}

	body, err := json.Marshal(oaiRequest{
		Model:     sel.Model,
		Messages:  msgs,
		MaxTokens: f.cfg.MaxTokens,
	})
	if err != nil {
		return Request{}, fmt.Errorf("marshal openai request: %w", err)
	}
	return Request{
		URL: f.cfg.OpenAI.BaseURL + "/chat/completions",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + f.cfg.OpenAI.APIKey,
		},
		Body:   body,
		Family: FamilyOpenAI,
		Model:  sel.Model,
	}, nil
}

func parseOpenAIResponse(body []byte) (string, error) {
	var resp oaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

package providers

import (
	"encoding/json"
	"fmt"
)

type googleRequest struct {
	Contents         []googleContent  `json:"contents"`
	GenerationConfig *googleGenConfig `json:"generationConfig,omitempty"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *googleInlineData `json:"inline_data,omitempty"`
}

type googleInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type googleGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// formatGoogle flattens the exchange into a single parts tree: system
// prompt, then the user text, then one inline_data part per embedded image.
// There are no roles and no separate system field on this wire shape.
func (f *Formatter) formatGoogle(sel Selection, in Input) (Request, error) {
	parts := make([]googlePart, 0, len(in.Media.Images)+2)
	if in.SystemPrompt != "" {
		parts = append(parts, googlePart{Text: in.SystemPrompt})
	}
	parts = append(parts, googlePart{Text: in.UserText})
	for _, img := range in.Media.Images {
		mimeType, payload, ok := splitDataURI(img.URL)
		if !ok {
			continue
		}
		parts = append(parts, googlePart{
			InlineData: &googleInlineData{MimeType: mimeType, Data: payload},
		})
	}

	body, err := json.Marshal(googleRequest{
		Contents:         []googleContent{{Parts: parts}},
		GenerationConfig: &googleGenConfig{MaxOutputTokens: f.cfg.MaxTokens},
	})
	if err != nil {
		return Request{}, fmt.Errorf("marshal google request: %w", err)
	}
	return Request{
		URL: fmt.Sprintf("%s/models/%s:generateContent", f.cfg.Google.BaseURL, sel.Model),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"x-goog-api-key": f.cfg.Google.APIKey,
		},
		Body:   body,
		Family: FamilyGoogle,
		Model:  sel.Model,
	}, nil
}

func parseGoogleResponse(body []byte) (string, error) {
	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode google response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("google response has no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

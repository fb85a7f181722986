package providers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Blizzyboii/calhacks/internal/config"
	"github.com/Blizzyboii/calhacks/internal/conversation"
	"github.com/Blizzyboii/calhacks/internal/media"
)

func testFormatter() *Formatter {
	return NewFormatter(config.LLMConfig{
		MaxTokens: 1024,
		OpenAI:    config.EndpointConfig{BaseURL: "https://api.openai.example/v1", APIKey: "sk-test"},
		Anthropic: config.EndpointConfig{BaseURL: "https://api.anthropic.example/v1", APIKey: "ak-test"},
		Google:    config.EndpointConfig{BaseURL: "https://google.example/v1beta", APIKey: "gk-test"},
	})
}

func testHistory() conversation.Window {
	return conversation.Window{
		{Role: conversation.RoleUser, Content: "what is Go?"},
		{Role: conversation.RoleAssistant, Content: "A programming language."},
	}
}

func TestFormatOpenAITextOnly(t *testing.T) {
	t.Parallel()
	req, err := testFormatter().Format(
		Selection{Model: "gpt-4o-mini", Family: FamilyOpenAI},
		Input{SystemPrompt: "be terse", History: testHistory(), UserText: "and generics?"},
	)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if req.URL != "https://api.openai.example/v1/chat/completions" {
		t.Errorf("URL = %q", req.URL)
	}
	if req.Headers["Authorization"] != "Bearer sk-test" {
		t.Errorf("Authorization = %q", req.Headers["Authorization"])
	}

	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(body.Messages) != 4 {
		t.Fatalf("messages = %d, want 4 (system + 2 history + user)", len(body.Messages))
	}
	if body.Messages[0].Role != "system" {
		t.Errorf("first role = %q, want system", body.Messages[0].Role)
	}
	if body.Messages[3].Role != "user" || string(body.Messages[3].Content) != `"and generics?"` {
		t.Errorf("last message = %+v, want plain-string user text", body.Messages[3])
	}
}

func TestFormatOpenAIWithImages(t *testing.T) {
	t.Parallel()
	req, err := testFormatter().Format(
		Selection{Model: "gpt-4o", Family: FamilyOpenAI},
		Input{
			UserText: "what is in this picture?",
			Media: media.Bundle{
				HasMedia: true,
				Images: []media.Item{
					{URL: "data:image/png;base64,aGVsbG8=", Source: media.SourceAttachment},
					{URL: "https://i.imgur.com/abc.png", Source: media.SourceTextLink},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	var body struct {
		Messages []struct {
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL    string `json:"url"`
					Detail string `json:"detail"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	segments := body.Messages[len(body.Messages)-1].Content
	if len(segments) != 3 {
		t.Fatalf("segments = %d, want text + 2 images", len(segments))
	}
	if segments[0].Type != "text" || segments[0].Text != "what is in this picture?" {
		t.Errorf("segment 0 = %+v, want original text first", segments[0])
	}
	if segments[1].ImageURL.URL != "data:image/png;base64,aGVsbG8=" || segments[1].ImageURL.Detail != "high" {
		t.Errorf("segment 1 = %+v, want data URI with high detail", segments[1])
	}
	if segments[2].ImageURL.URL != "https://i.imgur.com/abc.png" {
		t.Errorf("segment 2 = %+v, want pass-through link", segments[2])
	}
}

func TestFormatAnthropic(t *testing.T) {
	t.Parallel()
	req, err := testFormatter().Format(
		Selection{Model: "claude-sonnet-4-5", Family: FamilyAnthropic},
		Input{
			SystemPrompt: "be terse",
			History:      testHistory(),
			UserText:     "describe this",
			Media: media.Bundle{
				HasMedia: true,
				Images: []media.Item{
					{URL: "data:image/jpeg;base64,ZmFrZQ==", Source: media.SourceAttachment},
					// URL images are unsupported on this shape and must be dropped.
					{URL: "https://i.imgur.com/abc.png", Source: media.SourceTextLink},
				},
			},
		},
	)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if req.Headers["x-api-key"] != "ak-test" || req.Headers["anthropic-version"] == "" {
		t.Errorf("headers = %v, want x-api-key and anthropic-version", req.Headers)
	}

	var body struct {
		System   string `json:"system"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.System != "be terse" {
		t.Errorf("system = %q, want top-level prompt", body.System)
	}
	for _, m := range body.Messages {
		if m.Role != "user" {
			t.Errorf("message role = %q, want user only", m.Role)
		}
	}
	// History has one user turn, plus the final multimodal message.
	if len(body.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(body.Messages))
	}

	var blocks []struct {
		Type   string `json:"type"`
		Text   string `json:"text"`
		Source struct {
			Type      string `json:"type"`
			MediaType string `json:"media_type"`
			Data      string `json:"data"`
		} `json:"source"`
	}
	if err := json.Unmarshal(body.Messages[1].Content, &blocks); err != nil {
		t.Fatalf("unmarshal blocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want image + text (link image dropped)", len(blocks))
	}
	if blocks[0].Type != "image" || blocks[0].Source.Type != "base64" ||
		blocks[0].Source.MediaType != "image/jpeg" || blocks[0].Source.Data != "ZmFrZQ==" {
		t.Errorf("image block = %+v", blocks[0])
	}
	if blocks[1].Type != "text" || blocks[1].Text != "describe this" {
		t.Errorf("text block = %+v", blocks[1])
	}
}

func TestFormatGoogle(t *testing.T) {
	t.Parallel()
	req, err := testFormatter().Format(
		Selection{Model: "gemini-2.0-flash", Family: FamilyGoogle},
		Input{
			SystemPrompt: "be terse",
			UserText:     "what is this?",
			Media: media.Bundle{
				HasMedia: true,
				Images:   []media.Item{{URL: "data:image/png;base64,cGl4ZWxz", Source: media.SourceAttachment}},
			},
		},
	)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasSuffix(req.URL, "/models/gemini-2.0-flash:generateContent") {
		t.Errorf("URL = %q", req.URL)
	}
	if req.Headers["x-goog-api-key"] != "gk-test" {
		t.Errorf("x-goog-api-key = %q", req.Headers["x-goog-api-key"])
	}

	var body struct {
		Contents []struct {
			Parts []struct {
				Text       string `json:"text"`
				InlineData *struct {
					MimeType string `json:"mime_type"`
					Data     string `json:"data"`
				} `json:"inline_data"`
			} `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(body.Contents) != 1 {
		t.Fatalf("contents = %d, want single node", len(body.Contents))
	}
	parts := body.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want prompt + text + image", len(parts))
	}
	if parts[0].Text != "be terse" || parts[1].Text != "what is this?" {
		t.Errorf("text parts = %q, %q", parts[0].Text, parts[1].Text)
	}
	if parts[2].InlineData == nil || parts[2].InlineData.MimeType != "image/png" || parts[2].InlineData.Data != "cGl4ZWxz" {
		t.Errorf("inline part = %+v", parts[2])
	}
}

func TestFormatDeterministic(t *testing.T) {
	t.Parallel()
	in := Input{SystemPrompt: "p", History: testHistory(), UserText: "q"}
	for _, family := range []Family{FamilyOpenAI, FamilyAnthropic, FamilyGoogle} {
		sel := Selection{Model: "m", Family: family}
		a, err := testFormatter().Format(sel, in)
		if err != nil {
			t.Fatalf("Format(%s): %v", family, err)
		}
		b, err := testFormatter().Format(sel, in)
		if err != nil {
			t.Fatalf("Format(%s): %v", family, err)
		}
		if string(a.Body) != string(b.Body) {
			t.Errorf("%s formatting is not deterministic", family)
		}
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		family  Family
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "openai",
			family: FamilyOpenAI,
			body:   `{"choices":[{"message":{"content":"hi there"}}]}`,
			want:   "hi there",
		},
		{
			name:    "openai empty choices",
			family:  FamilyOpenAI,
			body:    `{"choices":[]}`,
			wantErr: true,
		},
		{
			name:   "anthropic",
			family: FamilyAnthropic,
			body:   `{"content":[{"type":"text","text":"hello"}]}`,
			want:   "hello",
		},
		{
			name:    "anthropic empty content",
			family:  FamilyAnthropic,
			body:    `{"content":[]}`,
			wantErr: true,
		},
		{
			name:   "google",
			family: FamilyGoogle,
			body:   `{"candidates":[{"content":{"parts":[{"text":"bonjour"}]}}]}`,
			want:   "bonjour",
		},
		{
			name:    "google no candidates",
			family:  FamilyGoogle,
			body:    `{"candidates":[]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			family:  FamilyOpenAI,
			body:    `<html>gateway error</html>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseResponse(tt.family, []byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

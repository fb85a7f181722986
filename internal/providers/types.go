package providers

import (
	"fmt"

	"github.com/Blizzyboii/calhacks/internal/conversation"
	"github.com/Blizzyboii/calhacks/internal/media"
)

// Family identifies one of the three supported provider wire shapes.
type Family string

const (
	// FamilyOpenAI is the flat message list with an inline system role.
	FamilyOpenAI Family = "openai"
	// FamilyAnthropic keeps the system prompt in a dedicated top-level field.
	FamilyAnthropic Family = "anthropic"
	// FamilyGoogle flattens the whole exchange into one parts tree.
	FamilyGoogle Family = "google"
)

// ParseFamily validates a configured family name.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyOpenAI, FamilyAnthropic, FamilyGoogle:
		return Family(s), nil
	}
	return "", fmt.Errorf("unknown provider family %q", s)
}

// Selection names the model and wire shape chosen for one dispatch.
type Selection struct {
	Model  string
	Family Family
}

// Input is the provider-agnostic material a formatter turns into a request.
type Input struct {
	SystemPrompt string
	History      conversation.Window
	UserText     string
	Media        media.Bundle
}

// Request is a fully formatted provider call, ready to dispatch.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
	Family  Family
	Model   string
}

// ParseResponse extracts the generated text from a provider response body
// according to the wire shape of its family.
func ParseResponse(family Family, body []byte) (string, error) {
	switch family {
	case FamilyOpenAI:
		return parseOpenAIResponse(body)
	case FamilyAnthropic:
		return parseAnthropicResponse(body)
	case FamilyGoogle:
		return parseGoogleResponse(body)
	}
	return "", fmt.Errorf("unknown provider family %q", family)
}

package providers

import (
	"fmt"
	"strings"

	"github.com/Blizzyboii/calhacks/internal/config"
)

// Formatter builds the provider-specific request body and headers for a
// selection. Formatting is deterministic for fixed inputs.
type Formatter struct {
	cfg config.LLMConfig
}

func NewFormatter(cfg config.LLMConfig) *Formatter {
	return &Formatter{cfg: cfg}
}

// Format renders the input into the wire shape of the selected family.
func (f *Formatter) Format(sel Selection, in Input) (Request, error) {
	switch sel.Family {
	case FamilyOpenAI:
		return f.formatOpenAI(sel, in)
	case FamilyAnthropic:
		return f.formatAnthropic(sel, in)
	case FamilyGoogle:
		return f.formatGoogle(sel, in)
	}
	return Request{}, fmt.Errorf("unknown provider family %q", sel.Family)
}

// splitDataURI takes apart a data:<mime>;base64,<payload> URI. Returns ok
// false for anything else, including plain URLs.
func splitDataURI(uri string) (mimeType, payload string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}
	mimeType, payload, found = strings.Cut(rest, ";base64,")
	if !found || mimeType == "" || payload == "" {
		return "", "", false
	}
	return mimeType, payload, true
}

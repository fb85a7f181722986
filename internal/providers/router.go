package providers

import (
	"log/slog"
	"strings"

	"github.com/Blizzyboii/calhacks/internal/config"
)

// Router picks the model and wire family for one dispatch. Media presence
// forces the vision-capable model; the family comes from an explicit
// per-model registry with a name-based fallback that fails closed to the
// OpenAI shape.
type Router struct {
	logger      *slog.Logger
	textModel   string
	visionModel string
	registry    map[string]Family
}

// NewRouter builds a router from the LLM configuration. Registry entries
// naming an unknown family are dropped with a warning.
func NewRouter(log *slog.Logger, cfg config.LLMConfig) *Router {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("service", "router"))
	registry := make(map[string]Family, len(cfg.Families))
	for model, name := range cfg.Families {
		family, err := ParseFamily(name)
		if err != nil {
			log.Warn("ignoring family override",
				slog.String("model", model),
				slog.String("error", err.Error()))
			continue
		}
		registry[model] = family
	}
	return &Router{
		logger:      log,
		textModel:   cfg.DefaultModel,
		visionModel: cfg.VisionModel,
		registry:    registry,
	}
}

// Select resolves the target model and family. When media is present the
// vision model wins regardless of the configured default.
func (r *Router) Select(hasMedia bool) Selection {
	model := r.textModel
	if hasMedia {
		model = r.visionModel
	}
	return Selection{Model: model, Family: r.FamilyOf(model)}
}

// FamilyOf resolves the wire family for a model identifier. The explicit
// registry wins; otherwise the name decides, defaulting to the OpenAI shape
// for anything unrecognized.
func (r *Router) FamilyOf(model string) Family {
	if family, ok := r.registry[model]; ok {
		return family
	}
	lowered := strings.ToLower(model)
	switch {
	case strings.Contains(lowered, "claude"):
		return FamilyAnthropic
	case strings.Contains(lowered, "gemini"):
		return FamilyGoogle
	default:
		return FamilyOpenAI
	}
}

// Package llm generates dataset prose through a configured language
// model. Every operation has a deterministic template fallback, so
// callers get usable text whether or not a provider is reachable.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/brandonestevez/walter/internal/model"
)

const (
	// DefaultProvider is used when no provider is configured.
	DefaultProvider = "ollama"
	// DefaultModel is used when neither config nor WALTER_MODEL name one.
	DefaultModel = "phi"

	defaultTemperature = 0.7
	defaultTagCount    = 5
)

// Config selects and tunes the model provider.
type Config struct {
	Provider    string // ollama or openai
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
}

func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Model == "" {
		c.Model = os.Getenv("WALTER_MODEL")
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	return c
}

// New builds the configured provider model.
func New(cfg Config) (llms.Model, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q (ollama, openai)", cfg.Provider)
	}
}

// Manager runs generation with a fallback path. A nil model means every
// call returns its template fallback.
type Manager struct {
	model       llms.Model
	temperature float64
	log         *zap.Logger
}

// NewManager wraps model. temperature <= 0 selects the default.
func NewManager(m llms.Model, temperature float64, log *zap.Logger) *Manager {
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{model: m, temperature: temperature, log: log}
}

// Available reports whether a model is wired in.
func (m *Manager) Available() bool {
	return m.model != nil
}

// Describe writes a prose description of the dataset. Generation
// failures fall back to the template.
func (m *Manager) Describe(ctx context.Context, sum *model.Summary) string {
	if m.model == nil {
		return FallbackDescription(sum)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, m.model, describePrompt(sum),
		llms.WithTemperature(m.temperature))
	if err != nil {
		m.log.Warn("description generation failed", zap.Error(err))
		return FallbackDescription(sum)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return FallbackDescription(sum)
	}
	return out
}

// SuggestTags proposes up to count lowercase hyphenated tags for a
// description. count <= 0 selects the default of 5.
func (m *Manager) SuggestTags(ctx context.Context, description string, count int) []string {
	if count <= 0 {
		count = defaultTagCount
	}
	if m.model == nil {
		return FallbackTags()
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, m.model, tagsPrompt(description, count),
		llms.WithTemperature(m.temperature))
	if err != nil {
		m.log.Warn("tag generation failed", zap.Error(err))
		return FallbackTags()
	}
	tags := parseTags(out, count)
	if len(tags) == 0 {
		return FallbackTags()
	}
	return tags
}

// FallbackDescription is the template description used without a model.
func FallbackDescription(sum *model.Summary) string {
	types := strings.Join(sum.GeometryTypes, ", ")
	if types == "" {
		types = "Unknown"
	}
	return fmt.Sprintf("Dataset contains %d features of type %s. Available attributes: %s.",
		sum.FeatureCount, types, strings.Join(sum.Columns, ", "))
}

// FallbackTags is the tag set used without a model.
func FallbackTags() []string {
	return []string{"gis", "spatial-data", "geospatial", "vector-data", "analysis"}
}

func describePrompt(sum *model.Summary) string {
	return fmt.Sprintf(`Generate a professional description of this GIS dataset:

Dataset Information:
- Name: %s
- Format: %s
- Features: %d %s
- CRS: %s
- Attributes: %s

Statistics:
%s

Write a clear, professional description that a GIS analyst would find helpful.
Focus on the key characteristics and potential uses of the dataset.
Use natural, flowing language rather than just listing facts.`,
		sum.Filename, sum.Format, sum.FeatureCount,
		strings.ToLower(strings.Join(sum.GeometryTypes, ", ")),
		sum.CRS, strings.Join(sum.Columns, ", "), statsJSON(sum.Stats))
}

func tagsPrompt(description string, count int) string {
	return fmt.Sprintf(`Based on this GIS dataset description, suggest %d relevant tags:

%s

Format the tags as a comma-separated list, using lowercase and hyphens for spaces.
Example: urban-planning, demographics, transportation

Tags:`, count, description)
}

func statsJSON(stats *model.GeometryStats) string {
	if stats == nil {
		return "{}"
	}
	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// parseTags splits a comma-separated model response into normalized
// tags: trimmed, lowercased, spaces hyphenated, empties dropped.
func parseTags(out string, count int) []string {
	var tags []string
	for _, raw := range strings.Split(out, ",") {
		tag := strings.ToLower(strings.TrimSpace(raw))
		tag = strings.ReplaceAll(tag, " ", "-")
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == count {
			break
		}
	}
	return tags
}

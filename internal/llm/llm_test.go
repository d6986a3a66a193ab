package llm

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/brandonestevez/walter/internal/model"
)

type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.response}}}, nil
}

func (f *fakeModel) Call(_ context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func marketsSummary() *model.Summary {
	return &model.Summary{
		Filename:      "markets.shp",
		Format:        "shapefile",
		FeatureCount:  3,
		GeometryTypes: []string{"Point"},
		Columns:       []string{"name", "category"},
		CRS:           "EPSG:4326",
	}
}

func TestDescribeUsesModel(t *testing.T) {
	fake := &fakeModel{response: "  A tidy set of market points.  "}
	mgr := NewManager(fake, 0, nil)

	got := mgr.Describe(context.Background(), marketsSummary())
	if got != "A tidy set of market points." {
		t.Errorf("describe: got %q", got)
	}
	if len(fake.prompts) != 1 {
		t.Fatalf("prompts recorded: got %d, want 1", len(fake.prompts))
	}
	prompt := fake.prompts[0]
	for _, want := range []string{"markets.shp", "3 point", "EPSG:4326", "name, category"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestDescribeFallsBackOnError(t *testing.T) {
	fake := &fakeModel{err: errors.New("connection refused")}
	mgr := NewManager(fake, 0, nil)

	got := mgr.Describe(context.Background(), marketsSummary())
	want := "Dataset contains 3 features of type Point. Available attributes: name, category."
	if got != want {
		t.Errorf("describe fallback:\ngot  %q\nwant %q", got, want)
	}
}

func TestDescribeWithoutModel(t *testing.T) {
	mgr := NewManager(nil, 0, nil)
	if mgr.Available() {
		t.Error("manager without model reports available")
	}
	got := mgr.Describe(context.Background(), marketsSummary())
	if got != FallbackDescription(marketsSummary()) {
		t.Errorf("describe without model: got %q", got)
	}
}

func TestFallbackDescriptionUnknownGeometry(t *testing.T) {
	sum := marketsSummary()
	sum.GeometryTypes = nil
	if got := FallbackDescription(sum); !strings.Contains(got, "type Unknown") {
		t.Errorf("fallback should name Unknown geometry: %q", got)
	}
}

func TestSuggestTags(t *testing.T) {
	fake := &fakeModel{response: "Urban Planning, Demographics, transportation"}
	mgr := NewManager(fake, 0, nil)

	got := mgr.SuggestTags(context.Background(), "City markets dataset.", 5)
	want := []string{"urban-planning", "demographics", "transportation"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags: got %v, want %v", got, want)
	}
	if !strings.Contains(fake.prompts[0], "suggest 5 relevant tags") {
		t.Errorf("prompt missing count:\n%s", fake.prompts[0])
	}
}

func TestSuggestTagsTruncatesToCount(t *testing.T) {
	fake := &fakeModel{response: "a, b, c, d, e, f, g"}
	mgr := NewManager(fake, 0, nil)

	got := mgr.SuggestTags(context.Background(), "x", 3)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags: got %v, want %v", got, want)
	}
}

func TestSuggestTagsFallsBack(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeModel
	}{
		{"generation error", &fakeModel{err: errors.New("boom")}},
		{"empty response", &fakeModel{response: " , ,"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := NewManager(tt.fake, 0, nil)
			got := mgr.SuggestTags(context.Background(), "x", 5)
			if !reflect.DeepEqual(got, FallbackTags()) {
				t.Errorf("tags: got %v, want fallback", got)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in    string
		count int
		want  []string
	}{
		{"urban-planning, demographics, transportation", 5, []string{"urban-planning", "demographics", "transportation"}},
		{"Land Use,WATER QUALITY", 5, []string{"land-use", "water-quality"}},
		{"a,\nb,\n c ", 2, []string{"a", "b"}},
		{"", 5, nil},
	}
	for _, tt := range tests {
		if got := parseTags(tt.in, tt.count); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseTags(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("WALTER_MODEL", "")

	cfg := Config{}.withDefaults()
	if cfg.Provider != "ollama" || cfg.Model != "phi" {
		t.Errorf("defaults: got %s/%s, want ollama/phi", cfg.Provider, cfg.Model)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("temperature: got %v, want 0.7", cfg.Temperature)
	}

	t.Setenv("WALTER_MODEL", "mistral")
	if got := (Config{}).withDefaults().Model; got != "mistral" {
		t.Errorf("env model: got %q, want mistral", got)
	}
	if got := (Config{Model: "llama3"}).withDefaults().Model; got != "llama3" {
		t.Errorf("explicit model: got %q, want llama3", got)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "bedrock"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), `"bedrock"`) {
		t.Errorf("error should name the provider: %v", err)
	}
}

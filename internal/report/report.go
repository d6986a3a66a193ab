// Package report turns dataset summaries into human-readable descriptions
// and documentation. Rendering is deterministic: a fixed summary and format
// always produce the same string.
package report

import (
	"fmt"
	"strings"

	"github.com/brandonestevez/walter/internal/model"
)

// Component is one titled section of a description, in render order.
type Component struct {
	Title string
	Body  string
}

// Components builds the description sections for a summary: overview,
// spatial, attributes, and, when enabled and computed, statistics.
func Components(sum *model.Summary, includeStats bool) []Component {
	types := strings.ToLower(strings.Join(sum.GeometryTypes, ", "))
	components := []Component{
		{
			Title: "Overview",
			Body:  fmt.Sprintf("This dataset (%s) contains %d %s features.", sum.Filename, sum.FeatureCount, types),
		},
		{
			Title: "Spatial",
			Body:  fmt.Sprintf("The data uses the %s coordinate system.", sum.CRS),
		},
		{
			Title: "Attributes",
			Body:  fmt.Sprintf("Available attributes include: %s.", strings.Join(sum.Columns, ", ")),
		},
	}
	if includeStats && sum.Stats != nil {
		components = append(components, Component{
			Title: "Statistics",
			Body: fmt.Sprintf("The features cover an area of %.2f %s, with a bounding box extent of %s.",
				sum.Stats.TotalArea, sum.Stats.AreaUnit, sum.Stats.BBox),
		})
	}
	return components
}

// Render formats components in the requested format. Unknown formats fall
// back to plain text.
func Render(components []Component, format string) string {
	switch strings.ToLower(format) {
	case "markdown":
		return renderMarkdown(components)
	case "html":
		return renderHTML(components)
	default:
		return renderText(components)
	}
}

// Describe is the full pipeline for one summary: build components, render.
func Describe(sum *model.Summary, format string, includeStats bool) string {
	return Render(Components(sum, includeStats), format)
}

func renderMarkdown(components []Component) string {
	sections := make([]string, 0, len(components))
	for _, c := range components {
		sections = append(sections, fmt.Sprintf("### %s\n\n%s\n", c.Title, c.Body))
	}
	return strings.Join(sections, "\n")
}

func renderHTML(components []Component) string {
	lines := []string{"<div class='walter-output'>"}
	for _, c := range components {
		lines = append(lines, fmt.Sprintf("<h3>%s</h3>\n<p>%s</p>", c.Title, c.Body))
	}
	lines = append(lines, "</div>")
	return strings.Join(lines, "\n")
}

func renderText(components []Component) string {
	sections := make([]string, 0, len(components))
	for _, c := range components {
		sections = append(sections, fmt.Sprintf("%s\n%s\n%s\n",
			strings.ToUpper(c.Title), strings.Repeat("=", len(c.Title)), c.Body))
	}
	return strings.Join(sections, "\n")
}

package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brandonestevez/walter/internal/model"
)

// DocumentOptions control full documentation rendering.
type DocumentOptions struct {
	Title       string
	Format      string // markdown, html, or gitbook
	Summary     string // lead paragraph, model-written or template
	Tags        []string
	GeneratedAt time.Time
}

// frontMatter is the YAML block prepended to GitBook pages.
type frontMatter struct {
	Title     string   `yaml:"title"`
	Tags      []string `yaml:"tags,omitempty"`
	Generated string   `yaml:"generated"`
}

// Document renders full documentation for a dataset: title, lead summary,
// description sections, attribute schema, attribute sample, and a provenance
// footer. The gitbook format is markdown with a YAML front matter block.
func Document(sum *model.Summary, opts DocumentOptions) (string, error) {
	switch strings.ToLower(opts.Format) {
	case "markdown":
		return markdownDocument(sum, opts), nil
	case "gitbook":
		fm, err := yaml.Marshal(frontMatter{
			Title:     opts.Title,
			Tags:      opts.Tags,
			Generated: opts.GeneratedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return "", fmt.Errorf("marshal front matter: %w", err)
		}
		return "---\n" + string(fm) + "---\n\n" + markdownDocument(sum, opts), nil
	case "html":
		return htmlDocument(sum, opts), nil
	default:
		return "", fmt.Errorf("unknown documentation format %q (markdown, html, gitbook)", opts.Format)
	}
}

func markdownDocument(sum *model.Summary, opts DocumentOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	if opts.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", opts.Summary)
	}
	b.WriteString(Render(Components(sum, true), "markdown"))

	if table := schemaTable(sum); table != "" {
		b.WriteString("\n### Schema\n\n")
		b.WriteString(table)
	}
	if table := sampleTable(sum); table != "" {
		b.WriteString("\n### Sample\n\n")
		b.WriteString(table)
	}

	fmt.Fprintf(&b, "\n_Generated by walter from `%s` (%s) on %s._\n",
		sum.Filename, sum.Format, opts.GeneratedAt.UTC().Format("2006-01-02"))
	return b.String()
}

func htmlDocument(sum *model.Summary, opts DocumentOptions) string {
	lines := []string{
		"<div class='walter-doc'>",
		fmt.Sprintf("<h1>%s</h1>", opts.Title),
	}
	if opts.Summary != "" {
		lines = append(lines, fmt.Sprintf("<p>%s</p>", opts.Summary))
	}
	lines = append(lines, Render(Components(sum, true), "html"))
	if len(sum.Columns) > 0 {
		lines = append(lines, "<h3>Schema</h3>", htmlSchemaTable(sum))
	}
	if len(sum.Sample) > 0 && len(sum.Columns) > 0 {
		lines = append(lines, "<h3>Sample</h3>", htmlSampleTable(sum))
	}
	lines = append(lines, fmt.Sprintf("<footer>Generated by walter from %s (%s) on %s.</footer>",
		sum.Filename, sum.Format, opts.GeneratedAt.UTC().Format("2006-01-02")))
	lines = append(lines, "</div>")
	return strings.Join(lines, "\n")
}

func htmlSchemaTable(sum *model.Summary) string {
	var b strings.Builder
	b.WriteString("<table>\n<tr><th>column</th><th>type</th></tr>\n")
	for _, col := range sum.Columns {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n", col, inferredType(sum.Sample, col))
	}
	b.WriteString("</table>")
	return b.String()
}

func htmlSampleTable(sum *model.Summary) string {
	var b strings.Builder
	b.WriteString("<table>\n<tr>")
	for _, col := range sum.Columns {
		fmt.Fprintf(&b, "<th>%s</th>", col)
	}
	b.WriteString("</tr>\n")
	for _, row := range sum.Sample {
		b.WriteString("<tr>")
		for _, col := range sum.Columns {
			fmt.Fprintf(&b, "<td>%s</td>", formatValue(row[col]))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")
	return b.String()
}

// schemaTable renders the column list with types inferred from the sample,
// as a markdown table.
func schemaTable(sum *model.Summary) string {
	if len(sum.Columns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| column | type |\n| --- | --- |\n")
	for _, col := range sum.Columns {
		fmt.Fprintf(&b, "| %s | %s |\n", col, inferredType(sum.Sample, col))
	}
	return b.String()
}

// inferredType names a column's type from its first non-nil sample value.
func inferredType(sample []map[string]any, col string) string {
	for _, row := range sample {
		switch row[col].(type) {
		case nil:
		case string:
			return "text"
		case float64, int64, int:
			return "number"
		case bool:
			return "boolean"
		default:
			return "unknown"
		}
	}
	return "unknown"
}

// sampleTable renders the attribute sample as a markdown table, columns in
// summary order. Empty samples render nothing.
func sampleTable(sum *model.Summary) string {
	if len(sum.Sample) == 0 || len(sum.Columns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(sum.Columns, " | ") + " |\n")
	seps := make([]string, len(sum.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for _, row := range sum.Sample {
		cells := make([]string, len(sum.Columns))
		for i, col := range sum.Columns {
			cells[i] = formatValue(row[col])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// formatValue renders one attribute value for table output.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

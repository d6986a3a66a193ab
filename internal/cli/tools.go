package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/brandonestevez/walter/internal/gitbook"
	"github.com/brandonestevez/walter/internal/llm"
)

// toolInfo is the JSON structure for the tools command output.
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List walter's integrations and their status",
	Long: `Display the integrations walter can use (language model, dataset catalog,
GitBook publishing, GitHub push) with their configuration status.`,
	Example: `  walter tools
  walter tools --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTools(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func listTools(ctx context.Context) error {
	tools := []toolInfo{
		modelTool(),
		catalogTool(ctx),
		gitbookTool(),
		githubTool(),
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}

	tbl := NewTable(os.Stdout, "NAME", "DESCRIPTION", "STATUS", "DETAIL")
	for _, t := range tools {
		detail := t.Detail
		if detail == "" {
			detail = "-"
		}
		tbl.Row(t.Name, t.Description, t.Status, detail)
	}
	return tbl.Flush()
}

func modelTool() toolInfo {
	provider := appConfig.LLMProvider
	if provider == "" {
		provider = llm.DefaultProvider
	}
	modelName := appConfig.LLMModel
	if modelName == "" {
		modelName = os.Getenv("WALTER_MODEL")
	}
	if modelName == "" {
		modelName = llm.DefaultModel
	}

	status := "ready"
	if provider == "openai" && os.Getenv("OPENAI_API_KEY") == "" {
		status = "needs OPENAI_API_KEY"
	}
	return toolInfo{
		Name:        "model",
		Description: "Language model for descriptions and tags",
		Status:      status,
		Detail:      provider + "/" + modelName,
	}
}

func catalogTool(ctx context.Context) toolInfo {
	info := toolInfo{
		Name:        "catalog",
		Description: "SQLite catalog of learned datasets",
		Detail:      catalogPath,
	}

	s, err := openCatalog()
	if err != nil {
		info.Status = "unavailable"
		return info
	}
	defer s.Close()

	info.Status = "ready"
	if n, err := s.Count(ctx); err == nil {
		info.Detail = fmt.Sprintf("%s datasets at %s", humanize.Comma(int64(n)), catalogPath)
	}
	return info
}

func gitbookTool() toolInfo {
	space := appConfig.GitBookSpace
	if space == "" {
		if cfg, err := gitbook.LoadConfig(gitbookConfigPath); err == nil {
			space = cfg.DefaultSpace
		}
	}

	status := "ready"
	switch {
	case os.Getenv("GITBOOK_TOKEN") == "":
		status = "needs GITBOOK_TOKEN"
	case space == "":
		status = "needs a space (walter config gitbook_space <id>)"
	}
	return toolInfo{
		Name:        "gitbook",
		Description: "Publishes documentation pages",
		Status:      status,
		Detail:      space,
	}
}

func githubTool() toolInfo {
	status := "ready"
	detail := ""
	if os.Getenv("GITHUB_TOKEN") == "" {
		status = "commit only"
		detail = "set GITHUB_TOKEN to push over HTTP(S)"
	}
	return toolInfo{
		Name:        "github",
		Description: "Commits and pushes documentation",
		Status:      status,
		Detail:      detail,
	}
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// emit prints s to stdout, or writes it to path when one is given. Markdown
// headed for a terminal is rendered with glamour; files and pipes get the
// raw string.
func emit(s, path, format string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		return nil
	}

	if format == "markdown" && isTTY(os.Stdout) {
		if rendered, err := renderTerminal(s); err == nil {
			fmt.Print(rendered)
			return nil
		}
	}

	fmt.Print(s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Println()
	}
	return nil
}

// renderTerminal formats markdown for the current terminal.
func renderTerminal(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(termWidth()),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

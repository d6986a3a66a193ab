package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/brandonestevez/walter/internal/gis"
	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/vector"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a dataset for geometry problems",
	Long: `Validate inspects every feature and reports structural geometry issues:
empty geometries, non-finite coordinates, unclosed polygon rings, degenerate
rings and lines, and duplicate consecutive vertices.

The exit status is non-zero when any issue is found.`,
	Example: `  walter validate parks.shp
  walter validate roads.geojson --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := vector.Open(args[0])
		if err != nil {
			return err
		}
		issues := gis.Validate(ds)

		if jsonOutput {
			if issues == nil {
				issues = []model.Issue{}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(issues); err != nil {
				return err
			}
		} else if len(issues) == 0 {
			fmt.Fprintln(os.Stderr, "No issues found.")
		} else {
			tbl := NewTable(os.Stdout, "FEATURE", "ISSUE")
			for _, issue := range issues {
				tbl.Row(strconv.Itoa(issue.Index), issue.Reason)
			}
			if err := tbl.Flush(); err != nil {
				return err
			}
		}

		if len(issues) > 0 {
			cmd.SilenceUsage = true
			return fmt.Errorf("%s in %s",
				english.Plural(len(issues), "geometry issue", ""), filepath.Base(args[0]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

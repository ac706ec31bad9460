package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kbeguinel/portfolio/internal/config"
	"github.com/kbeguinel/portfolio/internal/content"
)

//nolint:gochecknoglobals // Cobra boilerplate
var validateJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var validateCmd = &cobra.Command{
	Use:   "validate [content-directory]",
	Short: "Check content files for load errors and unknown skills",
	Long: `Loads the content directory the same way the server does and reports:
- documents that are missing or malformed
- skills used by a project, experience or formation but absent from the skill taxonomy
- skills listed under more than one category

Exits non-zero when loading fails or an unknown skill is found.

Examples:
  # Check the configured content directory
  portfolio validate

  # Check another directory and print the report as JSON
  portfolio validate ./data --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the report as JSON")
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		var cfg config.Config
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		dir = cfg.ContentDir
	}

	snap, err := content.NewLoader(dir).Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if validateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap.Report)
		if err != nil {
			return errors.Wrap(err, "encode report")
		}
	} else {
		printReport(out, snap)
	}

	if len(snap.Report.Orphans) > 0 {
		err = errors.Errorf("%d unknown skill reference(s)", len(snap.Report.Orphans))
	}
	return err
}

func printReport(w io.Writer, snap *content.Snapshot) {
	fmt.Fprintf(w, "%d experiences, %d formations, %d projects, %d skill categories\n",
		len(snap.Experiences), len(snap.Formations), len(snap.Projects), len(snap.Skills))

	for _, o := range snap.Report.Orphans {
		fmt.Fprintf(w, "unknown skill %q in %s %q\n", o.Skill, o.Kind, o.Owner)
	}
	for _, d := range snap.Report.Duplicates {
		fmt.Fprintf(w, "skill %q is listed in several categories\n", d)
	}
	if snap.Report.OK() {
		fmt.Fprintln(w, "ok")
	}
}

// Package cmd holds the portfolio command line: the HTTP server and a
// content checker.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Serve a personal portfolio site",
	Long: `portfolio serves a personal portfolio built from four content files:
experiences, skills, projects and contact details.

Content is read from a directory of JSON or YAML documents and reloaded when
the files change. Configuration comes from the environment and an optional
.env file.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

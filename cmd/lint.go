package cmd

import (
	"github.com/bloodmagesoftware/mesher/linter"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check models for syntax, topology, and tessellation problems",
	Long: `Parses every model, replays it into a fresh store, validates the half-edge
structure, and tessellates each face. Without arguments the project's models
directory is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := modelPaths(args)
		if err != nil {
			return err
		}

		return linter.Lint(paths...)
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

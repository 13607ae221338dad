package cmd

import (
	"github.com/bloodmagesoftware/mesher/formatter"
	"github.com/spf13/cobra"
)

var (
	fmtCheck bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Format operator logs",
	Long: `Rewrites operator logs (*.brep) in canonical spelling, keeping comments.
Without arguments the project's models directory is formatted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := modelPaths(args)
		if err != nil {
			return err
		}

		if fmtCheck {
			return formatter.Check(paths...)
		}

		return formatter.Format(paths...)
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Check formatting without modifying files")
}

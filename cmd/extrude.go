package cmd

import (
	"fmt"

	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/profile"
	"github.com/spf13/cobra"
)

var extrudeOutput string

var extrudeCmd = &cobra.Command{
	Use:   "extrude {profile.yaml}",
	Short: "Compile a profile into an operator log",
	Long: `Compiles an extrusion profile into the operator log that builds it. The log
is printed unless an output file is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(args[0])
		if err != nil {
			return err
		}
		l, err := p.Compile()
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		if extrudeOutput == "" {
			fmt.Print(l.String())
			return nil
		}
		if err := oplog.SaveFile(extrudeOutput, l); err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %s (%d operators)\n", extrudeOutput, l.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extrudeCmd)
	extrudeCmd.Flags().StringVarP(&extrudeOutput, "output", "o", "", "Write the log to this file")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/spf13/cobra"
)

var printFace int

var printCmd = &cobra.Command{
	Use:   "print {model}",
	Short: "Dump the half-edge structure of a model",
	Long: `Builds a model and prints every loop of every face, one half-edge per line
with its origin vertex and position.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := model.Load(args[0])
		if err != nil {
			return err
		}
		s, err := oplog.Build(l)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		if printFace < 0 {
			return s.Print(os.Stdout)
		}
		f, ok := s.FaceAt(printFace)
		if !ok {
			return fmt.Errorf("model has no face f%d", printFace)
		}
		return s.PrintFace(os.Stdout, f)
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().IntVar(&printFace, "face", -1, "Only print this face")
}

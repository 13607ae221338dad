package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bloodmagesoftware/mesher/brep"
	"github.com/bloodmagesoftware/mesher/project"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mesher",
	Short: "Mesher - B-rep solid modeling kernel and model build tool",
	Long: `Mesher builds boundary-representation solids from operator logs (*.brep)
and extrusion profiles (*.yaml). It replays Euler operators into a half-edge
store, tessellates the result, and exports OBJ meshes and QOI previews.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			brep.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log kernel operations to stderr")
}

// getProjectRoot returns the project root directory by looking for mesher.yaml.
func getProjectRoot() (string, error) {
	return project.FindProjectRoot()
}

// modelPaths returns args, or the project's models directory when args is
// empty.
func modelPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	projectRoot, err := getProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("no paths given and %w", err)
	}
	config, err := project.LoadConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return []string{config.ModelsPath(projectRoot)}, nil
}

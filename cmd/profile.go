package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/profile"
	"github.com/bloodmagesoftware/mesher/project"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile {profile-name}",
	Short: "Create or check the specified profile",
	Long: `Creates a new extrusion profile in the models directory if it doesn't exist,
starting from a unit square. Existing profiles are validated and summarized.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return cmd.Help()
		}
		profileName := args[0]

		projectRoot, err := getProjectRoot()
		if err != nil {
			return err
		}
		config, err := project.LoadConfig(projectRoot)
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}

		profilePath := filepath.Join(config.ModelsPath(projectRoot), profileName+model.ExtProfile)
		p := profile.New()
		if _, err := os.Stat(profilePath); err != nil {
			p.Outline = profile.Outline{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
			if err := p.Save(profilePath); err != nil {
				return fmt.Errorf("creating profile: %w", err)
			}
			fmt.Printf("✅ Created profile %s\n", profilePath)
			return nil
		}

		if err := p.Load(profilePath); err != nil {
			return err
		}
		l, err := p.Compile()
		if err != nil {
			return fmt.Errorf("%s: %w", profilePath, err)
		}

		fmt.Printf("%s\n", profilePath)
		fmt.Printf("  outline: %d points, area %g\n", len(p.Outline), abs(p.Outline.SignedArea()))
		fmt.Printf("  holes:   %d\n", len(p.Holes))
		fmt.Printf("  extrude: %g\n", p.Extrude.Distance)
		fmt.Printf("  log:     %d operators\n", l.Len())
		return nil
	},
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

package cmd

import (
	"fmt"

	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/tess"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats {model...}",
	Short: "Show entity counts and mesh statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := model.Expand(args)
		if err != nil {
			return err
		}

		for _, path := range paths {
			l, err := model.Load(path)
			if err != nil {
				return err
			}
			s, err := oplog.Build(l)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			buf, err := tess.Triangulate(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			st := s.Stats()
			lo, hi := buf.Bounds()
			fmt.Printf("%s\n", path)
			fmt.Printf("  operators: %d\n", l.Len())
			fmt.Printf("  solids %d  faces %d  loops %d  edges %d  vertices %d  rings %d\n",
				st.Solids, st.Faces, st.Loops, st.Edges, st.Vertices, st.Rings())
			fmt.Printf("  V-E+F:     %d\n", st.Euler())
			fmt.Printf("  triangles: %d\n", buf.Triangles())
			fmt.Printf("  area:      %g\n", buf.Area())
			fmt.Printf("  bounds:    (%g %g %g) - (%g %g %g)\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

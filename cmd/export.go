package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bloodmagesoftware/mesher/export"
	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/preview"
	"github.com/bloodmagesoftware/mesher/tess"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportPreview string
	exportYaw     float64
	exportPitch   float64
	exportSize    int
)

var exportCmd = &cobra.Command{
	Use:   "export {model}",
	Short: "Tessellate a model and write it as OBJ",
	Long: `Builds a single model, tessellates every face, and writes the triangles as a
Wavefront OBJ file. Optionally renders a QOI preview image as well.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
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
			return err
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := exportOutput
		if out == "" {
			out = name + ".obj"
		}
		if err := export.WriteOBJFile(out, name, buf); err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %s (%d triangles)\n", out, buf.Triangles())

		if exportPreview != "" {
			opt := preview.DefaultOptions()
			opt.Width, opt.Height = exportSize, exportSize
			opt.Yaw, opt.Pitch = exportYaw, exportPitch
			if err := preview.WriteFile(exportPreview, buf, opt); err != nil {
				return err
			}
			fmt.Printf("✅ Wrote %s\n", exportPreview)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	def := preview.DefaultOptions()
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "OBJ file to write (default <model>.obj)")
	exportCmd.Flags().StringVar(&exportPreview, "preview", "", "Also render a QOI preview to this file")
	exportCmd.Flags().Float64Var(&exportYaw, "yaw", def.Yaw, "Preview camera yaw in degrees")
	exportCmd.Flags().Float64Var(&exportPitch, "pitch", def.Pitch, "Preview camera pitch in degrees")
	exportCmd.Flags().IntVar(&exportSize, "size", def.Width, "Preview image size in pixels")
}

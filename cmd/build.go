package cmd

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"runtime"

	"github.com/bloodmagesoftware/mesher/brep"
	"github.com/bloodmagesoftware/mesher/buildcache"
	"github.com/bloodmagesoftware/mesher/export"
	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/oplog"
	"github.com/bloodmagesoftware/mesher/packager"
	"github.com/bloodmagesoftware/mesher/preview"
	"github.com/bloodmagesoftware/mesher/project"
	"github.com/bloodmagesoftware/mesher/tess"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	buildForce     bool
	buildNoPackage bool
	buildJobs      int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build every model of the project and package the results",
	Long: `Converts every operator log and profile in the models directory into a
canonical log, an OBJ mesh, and a QOI preview under the output directory,
then zips the output directory. Unchanged models are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectRoot, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("getting project root: %w", err)
		}

		// Load project configuration
		config, err := project.LoadConfig(projectRoot)
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}

		modelsDir := config.ModelsPath(projectRoot)
		outputDir := config.OutputPath(projectRoot)
		fmt.Printf("Building %s: %s -> %s\n", config.Name, modelsDir, outputDir)

		// Step 1: Find models
		paths, err := model.Find(modelsDir)
		if err != nil {
			return fmt.Errorf("finding models: %w", err)
		}
		if len(paths) == 0 {
			fmt.Println("No models found, nothing to build")
			return nil
		}

		// Step 2: Convert
		cache := buildcache.Load(outputDir)

		fmt.Printf("Converting %d models with %s timeout per model...\n", len(paths), config.Timeout)
		job := buildJob{
			config:    config,
			modelsDir: modelsDir,
			outputDir: outputDir,
			cache:     cache,
			force:     buildForce,
		}

		var names []string
		built, skipped := 0, 0
		for res, err := range convertModels(cmd.Context(), job, paths, buildJobs) {
			if err != nil {
				if saveErr := cache.Save(); saveErr != nil {
					fmt.Printf("Warning: Failed to save hash cache: %v\n", saveErr)
				}
				return fmt.Errorf("converting models: %w", err)
			}
			names = append(names, res.name)
			if res.skipped {
				fmt.Printf("  Up to date: %s\n", res.name)
				skipped++
				continue
			}
			fmt.Printf("  Converted: %s (%d faces, %d triangles)\n", res.name, res.stats.Faces, res.triangles)
			built++
		}

		for _, name := range cache.Prune(names) {
			fmt.Printf("  Forgot removed model: %s\n", name)
		}
		if err := cache.Save(); err != nil {
			fmt.Printf("Warning: Failed to save hash cache: %v\n", err)
		}
		fmt.Printf("Models: %d converted, %d up to date\n", built, skipped)

		// Step 3: Package
		if buildNoPackage {
			fmt.Println("\n✅ Build complete")
			return nil
		}

		packagePath, err := packager.Package(packager.PackageConfig{
			Name:       config.Name,
			ContentDir: outputDir,
			OutputDir:  outputDir,
			Exclude:    []string{buildcache.FileName},
		})
		if err != nil {
			return fmt.Errorf("packaging: %w", err)
		}

		fmt.Printf("\n✅ Build complete: %s\n", packagePath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "Rebuild models even if they are up to date")
	buildCmd.Flags().BoolVar(&buildNoPackage, "no-package", false, "Skip creating the zip archive")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", runtime.NumCPU(), "Number of models converted in parallel")
}

// buildJob holds what every model conversion of one build shares.
type buildJob struct {
	config    *project.Config
	modelsDir string
	outputDir string
	cache     *buildcache.Cache
	force     bool
}

type modelResult struct {
	name      string
	skipped   bool
	stats     brep.Stats
	triangles int
}

// convertModels yields one result per model, in the order of paths. Up to
// jobs conversions run at once, each bounded by the configured timeout. If a
// conversion fails, the iteration stops after yielding its error. Models
// that would share an output directory fail before anything is converted.
func convertModels(ctx context.Context, job buildJob, paths []string, jobs int) iter.Seq2[modelResult, error] {
	return func(yield func(modelResult, error) bool) {
		if err := model.CheckNames(job.modelsDir, paths); err != nil {
			yield(modelResult{}, err)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		type outcome struct {
			res modelResult
			err error
		}
		results := make([]chan outcome, len(paths))
		for i := range results {
			results[i] = make(chan outcome, 1)
		}

		g := &errgroup.Group{}
		g.SetLimit(max(1, jobs))
		go func() {
			for i, path := range paths {
				g.Go(func() error {
					res, err := job.convertWithTimeout(ctx, path)
					results[i] <- outcome{res: res, err: err}
					return nil
				})
			}
			g.Wait()
		}()

		for i := range paths {
			o := <-results[i]
			if !yield(o.res, o.err) || o.err != nil {
				return
			}
		}
	}
}

// convertWithTimeout runs convert in a goroutine and gives up when the
// per-model timeout expires.
func (j buildJob) convertWithTimeout(ctx context.Context, path string) (modelResult, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	type result struct {
		res modelResult
		err error
	}
	resultChan := make(chan result, 1)

	go func() {
		res, err := j.convert(ctx, path)
		resultChan <- result{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return modelResult{}, fmt.Errorf("model conversion timed out after %s: %s", j.config.Timeout, path)
		}
		return modelResult{}, ctx.Err()
	case r := <-resultChan:
		return r.res, r.err
	}
}

// convert builds one model and writes its artifacts to
// <output>/<name>/<base>.{brep,obj,qoi}.
func (j buildJob) convert(ctx context.Context, path string) (modelResult, error) {
	name := model.Name(j.modelsDir, path)
	res := modelResult{name: name}

	hash, err := buildcache.HashFile(path, j.config.Fingerprint())
	if err != nil {
		return res, fmt.Errorf("hashing %s: %w", path, err)
	}
	if !j.force && j.cache.Fresh(name, hash) {
		res.skipped = true
		return res, nil
	}
	j.cache.Forget(name)

	l, err := model.Load(path)
	if err != nil {
		return res, err
	}
	s, err := oplog.Build(l)
	if err != nil {
		return res, fmt.Errorf("building %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return res, fmt.Errorf("validating %s: %w", path, err)
	}
	buf, err := tess.Triangulate(ctx, s)
	if err != nil {
		return res, fmt.Errorf("tessellating %s: %w", path, err)
	}
	res.stats = s.Stats()
	res.triangles = buf.Triangles()

	dir := filepath.Join(j.outputDir, filepath.FromSlash(name))
	base := filepath.Base(filepath.FromSlash(name))

	if err := oplog.SaveFile(filepath.Join(dir, base+model.ExtLog), l); err != nil {
		return res, fmt.Errorf("saving log for %s: %w", name, err)
	}
	if j.config.Export.OBJ {
		if err := export.WriteOBJFile(filepath.Join(dir, base+".obj"), base, buf); err != nil {
			return res, fmt.Errorf("exporting %s: %w", name, err)
		}
	}
	if j.config.Preview.Enabled {
		if err := preview.WriteFile(filepath.Join(dir, base+".qoi"), buf, previewOptions(j.config)); err != nil {
			return res, fmt.Errorf("rendering preview for %s: %w", name, err)
		}
	}

	j.cache.Put(name, hash)
	return res, nil
}

func previewOptions(config *project.Config) preview.Options {
	opt := preview.DefaultOptions()
	opt.Width = config.Preview.Width
	opt.Height = config.Preview.Height
	opt.Yaw = config.Preview.Yaw
	opt.Pitch = config.Preview.Pitch
	return opt
}

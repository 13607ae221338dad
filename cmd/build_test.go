package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bloodmagesoftware/mesher/buildcache"
	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/project"
)

const cubeLog = `Mvfs (0 0 0)
Mve (1 0 0) v0 f0
Mve (1 1 0) v1 f0
Mve (0 1 0) v2 f0
Mef v3 v0 f0
Sweep f1 (0 0 1) 1
`

const plateProfile = `outline:
    - {x: 0, y: 0}
    - {x: 2, y: 0}
    - {x: 2, y: 2}
    - {x: 0, y: 2}
extrude:
    distance: 0.5
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newJob(t *testing.T) (buildJob, []string) {
	t.Helper()
	root := t.TempDir()
	config := project.Default()
	config.Name = "demo"
	config.Preview.Width, config.Preview.Height = 32, 32

	models := config.ModelsPath(root)
	writeFile(t, filepath.Join(models, "cube.brep"), cubeLog)
	writeFile(t, filepath.Join(models, "parts", "plate.yaml"), plateProfile)

	out := config.OutputPath(root)
	job := buildJob{
		config:    &config,
		modelsDir: models,
		outputDir: out,
		cache:     buildcache.Load(out),
	}
	return job, []string{
		filepath.Join(models, "cube.brep"),
		filepath.Join(models, "parts", "plate.yaml"),
	}
}

func collect(t *testing.T, job buildJob, paths []string) []modelResult {
	t.Helper()
	var results []modelResult
	for res, err := range convertModels(context.Background(), job, paths, 2) {
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		results = append(results, res)
	}
	return results
}

func TestConvertModels(t *testing.T) {
	job, paths := newJob(t)

	results := collect(t, job, paths)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	testCases := []struct {
		Name      string
		Faces     int
		Triangles int
	}{
		{Name: "cube", Faces: 6, Triangles: 12},
		{Name: "parts/plate", Faces: 6, Triangles: 12},
	}
	for i, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			res := results[i]
			if res.name != tc.Name {
				t.Fatalf("result %d is %q, want %q", i, res.name, tc.Name)
			}
			if res.skipped {
				t.Error("first build should not skip")
			}
			if res.stats.Faces != tc.Faces || res.triangles != tc.Triangles {
				t.Errorf("got %d faces and %d triangles, want %d and %d", res.stats.Faces, res.triangles, tc.Faces, tc.Triangles)
			}

			base := filepath.Base(tc.Name)
			dir := filepath.Join(job.outputDir, filepath.FromSlash(tc.Name))
			for _, ext := range []string{".brep", ".obj", ".qoi"} {
				if _, err := os.Stat(filepath.Join(dir, base+ext)); err != nil {
					t.Errorf("missing artifact: %v", err)
				}
			}
		})
	}

	// The compiled profile is stored as a log.
	data, err := os.ReadFile(filepath.Join(job.outputDir, "parts", "plate", "plate.brep"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Mvfs (0 0 0)\n") || !strings.Contains(string(data), "Sweep f1 (0 0 1) 0.5") {
		t.Errorf("unexpected plate log:\n%s", data)
	}
}

func TestConvertModelsSkipsFresh(t *testing.T) {
	job, paths := newJob(t)
	collect(t, job, paths)
	if err := job.cache.Save(); err != nil {
		t.Fatal(err)
	}

	job.cache = buildcache.Load(job.outputDir)
	for _, res := range collect(t, job, paths) {
		if !res.skipped {
			t.Errorf("%s was rebuilt", res.name)
		}
	}

	// Changing a setting that affects output invalidates every model.
	job.config.Export.OBJ = false
	for _, res := range collect(t, job, paths) {
		if res.skipped {
			t.Errorf("%s was skipped after a settings change", res.name)
		}
	}

	job.force = true
	for _, res := range collect(t, job, paths) {
		if res.skipped {
			t.Errorf("%s was skipped in a forced build", res.name)
		}
	}
}

func TestConvertModelsStopsAtFirstError(t *testing.T) {
	job, paths := newJob(t)
	bad := filepath.Join(job.modelsDir, "bad.brep")
	writeFile(t, bad, "Mvfs (0 0 0)\nMef v0 v0 f0\n")
	paths = []string{paths[0], bad, paths[1]}

	var names []string
	var failed error
	for res, err := range convertModels(context.Background(), job, paths, 1) {
		if err != nil {
			failed = err
			break
		}
		names = append(names, res.name)
	}

	if failed == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(failed.Error(), "#1 (Mef)") {
		t.Errorf("error %q does not name the failing operator", failed)
	}
	if len(names) != 1 || names[0] != "cube" {
		t.Errorf("got results %v before the error, want [cube]", names)
	}
}

func TestConvertModelsRejectsSharedNames(t *testing.T) {
	job, paths := newJob(t)
	twin := filepath.Join(job.modelsDir, "cube.yaml")
	writeFile(t, twin, plateProfile)
	paths = append(paths, twin)

	var failed error
	converted := 0
	for _, err := range convertModels(context.Background(), job, paths, 2) {
		if err != nil {
			failed = err
			break
		}
		converted++
	}

	if !errors.Is(failed, model.ErrDuplicateName) {
		t.Fatalf("got %v, want a duplicate name error", failed)
	}
	if converted != 0 {
		t.Errorf("converted %d models before rejecting the clash", converted)
	}
	if _, err := os.Stat(filepath.Join(job.outputDir, "cube")); !os.IsNotExist(err) {
		t.Errorf("output was written for a clashing model: %v", err)
	}
}

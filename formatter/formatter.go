package formatter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bloodmagesoftware/mesher/model"
	"github.com/bloodmagesoftware/mesher/oplog"
)

// Format rewrites every operator log among paths in canonical form.
func Format(paths ...string) error {
	fmt.Println("Formatting operator logs...")

	files, err := logs(paths)
	if err != nil {
		return err
	}

	changed := 0
	for _, path := range files {
		src, formatted, err := formatFile(path)
		if err != nil {
			return err
		}
		if bytes.Equal(src, formatted) {
			continue
		}
		if err := os.WriteFile(path, formatted, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("  Formatted: %s\n", path)
		changed++
	}

	fmt.Printf("✅ Formatting completed (%d of %d files changed)\n", changed, len(files))
	return nil
}

// Check reports operator logs among paths that are not in canonical form
// without modifying them.
func Check(paths ...string) error {
	fmt.Println("Checking operator log formatting...")

	files, err := logs(paths)
	if err != nil {
		return err
	}

	var unformatted []string
	for _, path := range files {
		src, formatted, err := formatFile(path)
		if err != nil {
			return err
		}
		if !bytes.Equal(src, formatted) {
			fmt.Printf("  Needs formatting: %s\n", path)
			unformatted = append(unformatted, path)
		}
	}

	if len(unformatted) > 0 {
		return fmt.Errorf("%d files need formatting", len(unformatted))
	}

	fmt.Println("✅ Format check completed")
	return nil
}

func logs(paths []string) ([]string, error) {
	files, err := model.Expand(paths)
	if err != nil {
		return nil, fmt.Errorf("collecting models: %w", err)
	}
	var out []string
	for _, path := range files {
		if filepath.Ext(path) == model.ExtLog {
			out = append(out, path)
		}
	}
	return out, nil
}

func formatFile(path string) (src, formatted []byte, err error) {
	src, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	formatted, err = oplog.Canonical(src)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, formatted, nil
}

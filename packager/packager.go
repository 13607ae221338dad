package packager

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// PackageConfig holds the configuration for packaging.
type PackageConfig struct {
	Name       string   // Archive name (without extension) and top-level folder inside it
	ContentDir string   // Directory whose files are archived
	OutputDir  string   // Directory to output the zip file
	Exclude    []string // Base names that are never archived
}

// Package zips every file below ContentDir into <OutputDir>/<Name>.zip.
// Other zip files are skipped so an archive never swallows an older one.
// Returns the path to the created zip file.
func Package(config PackageConfig) (string, error) {
	fmt.Println("Packaging build artifacts...")

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	zipPath := filepath.Join(config.OutputDir, config.Name+".zip")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("creating zip file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	skip := func(path string) bool {
		base := filepath.Base(path)
		return filepath.Ext(base) == ".zip" || slices.Contains(config.Exclude, base)
	}
	count, err := addDirToZip(zipWriter, config.ContentDir, config.Name, skip)
	if err != nil {
		zipWriter.Close()
		return "", fmt.Errorf("adding %s to zip: %w", config.ContentDir, err)
	}

	if err := zipWriter.Close(); err != nil {
		return "", fmt.Errorf("finishing zip file: %w", err)
	}

	fmt.Printf("✅ Package created: %s (%d files)\n", zipPath, count)
	return zipPath, nil
}

// addFileToZip adds a single file to the zip archive.
func addFileToZip(zipWriter *zip.Writer, filePath, nameInZip string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("getting file info: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("creating zip header: %w", err)
	}

	header.Name = nameInZip
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("creating zip entry: %w", err)
	}

	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("writing file to zip: %w", err)
	}

	fmt.Printf("  Added: %s\n", nameInZip)
	return nil
}

// addDirToZip adds the files below dirPath to the archive under nameInZip,
// preserving their relative layout. It returns the number of files added.
func addDirToZip(zipWriter *zip.Writer, dirPath, nameInZip string, skip func(string) bool) (int, error) {
	count := 0
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || skip(path) {
			return nil
		}

		relPath, err := filepath.Rel(dirPath, path)
		if err != nil {
			return fmt.Errorf("calculating relative path: %w", err)
		}

		// Zip entries always use forward slashes
		zipPath := filepath.ToSlash(filepath.Join(nameInZip, relPath))
		if err := addFileToZip(zipWriter, path, zipPath); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

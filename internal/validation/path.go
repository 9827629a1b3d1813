// Package validation checks user supplied paths and URLs before a label batch
// touches the file system or the network.
package validation

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands a leading ~ and cleans the path
func ExpandPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %s: %w", p, err)
	}
	return filepath.Clean(expanded), nil
}

// ValidateOutputDir checks that dir is an existing, writable directory.
// Missing directories are created when create is set.
func ValidateOutputDir(dir string, create bool) error {
	if dir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	cleanPath, err := ExpandPath(dir)
	if err != nil {
		return err
	}

	// Check for path traversal attempts
	if hasParentSegment(cleanPath) {
		return fmt.Errorf("path traversal detected in output directory: %s", dir)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	switch {
	case os.IsNotExist(err) && create:
		if err := os.MkdirAll(absPath, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", absPath, err)
		}
	case os.IsNotExist(err):
		return fmt.Errorf("output directory does not exist: %s", absPath)
	case err != nil:
		return fmt.Errorf("failed to access output directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("output path is not a directory: %s", absPath)
	}

	// Check if directory is writable by attempting to create a temp file
	testFile := filepath.Join(absPath, ".labelprint_write_test")
	f, err := os.OpenFile(testFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("output directory is not writable: %s: %w", absPath, err)
	}
	f.Close()
	os.Remove(testFile)

	return nil
}

// ValidateInputPath validates an input file or directory (template, catalog)
func ValidateInputPath(inputPath string, mustBeDir bool) error {
	if inputPath == "" {
		return fmt.Errorf("input path cannot be empty")
	}

	cleanPath, err := ExpandPath(inputPath)
	if err != nil {
		return err
	}

	// Relative paths must not climb out of the working directory
	if hasParentSegment(cleanPath) && !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("potentially unsafe path detected: %s", inputPath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input path does not exist: %s", cleanPath)
		}
		return fmt.Errorf("failed to access input path: %w", err)
	}

	if mustBeDir && !info.IsDir() {
		return fmt.Errorf("input path must be a directory: %s", cleanPath)
	}
	if !mustBeDir && info.IsDir() {
		return fmt.Errorf("input path must be a file: %s", cleanPath)
	}

	return nil
}

// Paths exposes the path checks as methods so callers can inject them
type Paths struct{}

// ValidateOutputDir calls the package-level ValidateOutputDir
func (Paths) ValidateOutputDir(dir string, create bool) error {
	return ValidateOutputDir(dir, create)
}

// ValidateInputPath calls the package-level ValidateInputPath
func (Paths) ValidateInputPath(path string, mustBeDir bool) error {
	return ValidateInputPath(path, mustBeDir)
}

// ValidateCatalogURL checks that a remote catalog address is an absolute http(s) URL
func ValidateCatalogURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("catalog URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("catalog URL must use http or https: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("catalog URL has no host: %s", raw)
	}
	if u.User != nil {
		return fmt.Errorf("catalog URL must not embed credentials; use catalog_token")
	}
	return nil
}

func hasParentSegment(p string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(p), "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

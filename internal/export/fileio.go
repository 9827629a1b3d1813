package export

import (
	"fmt"
	"os"
	"regexp"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// writeFile writes data to a file
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// createFile creates a new file for writing
func createFile(path string) (*os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return file, nil
}

// safeName keeps product identifiers usable as file name components
func safeName(s string) string {
	s = unsafeNameChars.ReplaceAllString(s, "_")
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

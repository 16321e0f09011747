package storage

import (
	"fmt"
	"os"
)

// ReadFragment returns the static HTML fragment at path verbatim.
func ReadFragment(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fragment: read %q: %w", path, err)
	}
	return string(b), nil
}

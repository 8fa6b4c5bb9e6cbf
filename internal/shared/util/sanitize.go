package util

import (
	"errors"
	"strings"
)

// SanitizeFileName replaces path separators so the result is a single path
// element. Dots inside a name are kept; "." and ".." alone are rejected.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" || s == "." || s == ".." {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

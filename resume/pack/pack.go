// Package pack archives rendered portfolio files.
package pack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"resume2portfolio/resume/render"
)

// modTime is stamped on every entry so identical file sets produce identical archives.
var modTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Zip writes files into a deflate-compressed archive, one entry per path in
// sorted order.
func Zip(files render.FileSet) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range files.Paths() {
		header := &zip.FileHeader{
			Name:     p,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		header.SetMode(0o644)
		entry, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", p, err)
		}
		if _, err := entry.Write([]byte(files[p])); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", p, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

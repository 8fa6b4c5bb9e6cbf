package publish

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"resume2portfolio/internal/shared/storage/object"
	"resume2portfolio/internal/shared/util"
	"resume2portfolio/resume/render"
)

const exportRoot = "sites"

// Exporter writes rendered sites into object storage under sites/<name>/.
type Exporter struct {
	Store object.ObjectStore
	// BaseURL is the public URL the store is served from. Empty means the
	// export has no public URL.
	BaseURL string
}

// Export is the outcome of a successful Export call.
type Export struct {
	Name   string   `json:"name"`
	Prefix string   `json:"prefix"`
	URL    string   `json:"url,omitempty"`
	Files  []string `json:"files"`
}

// Export writes every file of files. Existing objects under the same name are
// overwritten.
func (e *Exporter) Export(ctx context.Context, name string, files render.FileSet) (Export, error) {
	slug := util.Slug(name)
	if slug == "" {
		return Export{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	prefix := path.Join(exportRoot, slug)
	out := Export{Name: slug, Prefix: prefix, Files: files.Paths()}

	for _, p := range out.Files {
		key, err := object.CleanKey(path.Join(prefix, p))
		if err != nil {
			return Export{}, fmt.Errorf("export %s: %w", p, err)
		}
		if _, err := e.Store.Put(ctx, key, ContentType(p), strings.NewReader(files[p])); err != nil {
			return Export{}, fmt.Errorf("export %s: %w", p, err)
		}
	}

	if base := strings.TrimRight(e.BaseURL, "/"); base != "" {
		entry := "index.html"
		if _, ok := files[entry]; !ok {
			entry = ""
		}
		out.URL = base + "/" + prefix + "/" + entry
	}
	return out, nil
}

// ContentType guesses a MIME type from the file extension.
func ContentType(p string) string {
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".jsx", ".js":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}

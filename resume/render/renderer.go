package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"resume2portfolio/resume/model"
)

const stylesheetLink = `<link rel="stylesheet" href="styles.css">`

// FileSet maps output paths to file contents.
type FileSet map[string]string

// Paths returns the file paths in lexical order.
func (f FileSet) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type layoutEntry struct {
	src       string
	dest      string
	templated bool
}

var layouts = map[string][]layoutEntry{
	KindHTML: {
		{src: "index.html", dest: "index.html", templated: true},
		{src: "styles.css", dest: "styles.css"},
	},
	KindComponent: {
		{src: "App.jsx", dest: "src/App.jsx", templated: true},
		{src: "index.js", dest: "src/index.js"},
		{src: "styles.css", dest: "src/styles.css"},
		{src: "package.json", dest: "package.json"},
		{src: "vercel.json", dest: "vercel.json"},
	},
}

type bundle struct {
	kind   string
	files  map[string]string
	layout []layoutEntry
}

// Renderer fills theme bundles with record data. Bundles are read once in New
// and never mutated, so a Renderer is safe for concurrent use.
type Renderer struct {
	catalog Catalog
	bundles map[Selector]bundle
}

// New loads the catalog and every theme/format bundle from fsys.
func New(fsys fs.FS) (*Renderer, error) {
	catalog, err := LoadCatalog(fsys)
	if err != nil {
		return nil, err
	}
	r := &Renderer{catalog: catalog, bundles: make(map[Selector]bundle)}
	for _, theme := range catalog.Themes {
		for _, format := range catalog.Formats {
			b, err := loadBundle(fsys, theme.ID, format)
			if err != nil {
				return nil, err
			}
			r.bundles[Selector{Theme: theme.ID, Format: format.ID}] = b
		}
	}
	return r, nil
}

// NewFromDir loads bundles from an on-disk template directory.
func NewFromDir(dir string) (*Renderer, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("template dir: %w", err)
	}
	return New(os.DirFS(dir))
}

func loadBundle(fsys fs.FS, theme string, format Format) (bundle, error) {
	layout := layouts[format.Kind]
	b := bundle{kind: format.Kind, files: make(map[string]string, len(layout)), layout: layout}
	for _, entry := range layout {
		p := path.Join("bundles", theme, format.ID, entry.src)
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return bundle{}, fmt.Errorf("%w: %s", ErrBundleMissing, p)
			}
			return bundle{}, fmt.Errorf("read %s: %w", p, err)
		}
		b.files[entry.src] = string(raw)
	}
	return b, nil
}

// Catalog returns the loaded catalog.
func (r *Renderer) Catalog() Catalog {
	return r.catalog
}

// Resolve applies the catalog fallbacks to sel.
func (r *Renderer) Resolve(sel Selector) Selector {
	return r.catalog.Resolve(sel)
}

// Render produces the site files for rec. Unknown theme or format values fall
// back to the catalog defaults; the selector actually used is returned.
func (r *Renderer) Render(rec model.Record, sel Selector) (FileSet, Selector, error) {
	resolved := r.catalog.Resolve(sel)
	b, ok := r.bundles[resolved]
	if !ok {
		return nil, resolved, fmt.Errorf("%w: %s/%s", ErrBundleMissing, resolved.Theme, resolved.Format)
	}
	return b.render(rec.Normalize()), resolved, nil
}

// Preview returns a single self-contained HTML page for rec. Component formats
// preview through the theme's default HTML bundle.
func (r *Renderer) Preview(rec model.Record, sel Selector) (string, error) {
	resolved := r.catalog.Resolve(sel)
	b, ok := r.bundles[resolved]
	if !ok || b.kind != KindHTML {
		resolved.Format = r.catalog.Defaults.Format
		b, ok = r.bundles[resolved]
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrBundleMissing, resolved.Theme, resolved.Format)
	}
	files := b.render(rec.Normalize())
	return inlineStyles(files["index.html"], files["styles.css"]), nil
}

func (b bundle) render(rec model.Record) FileSet {
	replacer := replacerFor(b.kind, rec)
	out := make(FileSet, len(b.layout))
	for _, entry := range b.layout {
		content := b.files[entry.src]
		if entry.templated {
			content = replacer.Replace(content)
		}
		out[entry.dest] = content
	}
	return out
}

func replacerFor(kind string, rec model.Record) *strings.Replacer {
	list := func(items []string) string { return strings.Join(items, "<br>") }
	skills := strings.Join(rec.Skills, ", ")
	if kind == KindComponent {
		list = jsArray
		skills = jsArray(rec.Skills)
	}
	return strings.NewReplacer(
		"{{name}}", rec.Name,
		"{{summary}}", rec.Summary,
		"{{skills}}", skills,
		"{{education}}", list(rec.Education),
		"{{experience}}", list(rec.Experience),
		"{{projects}}", list(rec.Projects),
		"{{contact}}", rec.Contact,
	)
}

// jsArray encodes items as JSON text that can sit inside a single-quoted
// JavaScript string literal and round-trip through JSON.parse.
func jsArray(items []string) string {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	escaped := strings.ReplaceAll(string(raw), `\`, `\\`)
	return strings.ReplaceAll(escaped, `'`, `\'`)
}

func inlineStyles(html, css string) string {
	style := "<style>\n" + css + "</style>"
	if strings.Contains(html, stylesheetLink) {
		return strings.Replace(html, stylesheetLink, style, 1)
	}
	if i := strings.Index(html, "</head>"); i >= 0 {
		return html[:i] + style + "\n" + html[i:]
	}
	return style + "\n" + html
}

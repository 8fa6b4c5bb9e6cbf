package render

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
)

const catalogFile = "catalog.toml"

// Format kinds. HTML kinds ship index.html and styles.css; component kinds ship
// a small React project.
const (
	KindHTML      = "html"
	KindComponent = "component"
)

// Theme is a visual style. Aliases resolve to the theme ID.
type Theme struct {
	ID          string   `toml:"id" json:"id"`
	Name        string   `toml:"name" json:"name"`
	Description string   `toml:"description" json:"description"`
	Aliases     []string `toml:"aliases" json:"aliases,omitempty"`
}

// Format is an output flavor of a theme; Kind selects the bundle layout.
type Format struct {
	ID   string `toml:"id" json:"id"`
	Name string `toml:"name" json:"name"`
	Kind string `toml:"kind" json:"kind"`
}

// Defaults names the theme and format used when a selector does not resolve.
type Defaults struct {
	Theme  string `toml:"theme" json:"theme"`
	Format string `toml:"format" json:"format"`
}

// Catalog lists the themes and formats a renderer can produce.
type Catalog struct {
	Defaults Defaults `toml:"defaults" json:"defaults"`
	Themes   []Theme  `toml:"themes" json:"themes"`
	Formats  []Format `toml:"formats" json:"formats"`
}

// Selector names a theme and an output format.
type Selector struct {
	Theme  string `json:"theme"`
	Format string `json:"format"`
}

// LoadCatalog decodes catalog.toml from the root of fsys.
func LoadCatalog(fsys fs.FS) (Catalog, error) {
	raw, err := fs.ReadFile(fsys, catalogFile)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: read %s: %v", ErrInvalidCatalog, catalogFile, err)
	}
	var c Catalog
	if _, err := toml.Decode(string(raw), &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Themes) == 0 {
		return fmt.Errorf("%w: no themes", ErrInvalidCatalog)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("%w: no formats", ErrInvalidCatalog)
	}
	for _, f := range c.Formats {
		if f.Kind != KindHTML && f.Kind != KindComponent {
			return fmt.Errorf("%w: format %q has unknown kind %q", ErrInvalidCatalog, f.ID, f.Kind)
		}
	}
	if c.Defaults.Theme == "" {
		c.Defaults.Theme = c.Themes[0].ID
	}
	if _, ok := c.theme(c.Defaults.Theme); !ok {
		return fmt.Errorf("%w: default theme %q not listed", ErrInvalidCatalog, c.Defaults.Theme)
	}
	if c.Defaults.Format == "" {
		c.Defaults.Format = KindHTML
	}
	def, ok := c.format(c.Defaults.Format)
	if !ok {
		return fmt.Errorf("%w: default format %q not listed", ErrInvalidCatalog, c.Defaults.Format)
	}
	if def.Kind != KindHTML {
		return fmt.Errorf("%w: default format %q must be an html kind", ErrInvalidCatalog, def.ID)
	}
	return nil
}

// Resolve maps a requested selector onto catalog entries. Theme and format
// fall back to the defaults independently; matching ignores case and
// surrounding whitespace, and theme aliases are honored.
func (c Catalog) Resolve(sel Selector) Selector {
	out := Selector{Theme: c.Defaults.Theme, Format: c.Defaults.Format}
	if t, ok := c.theme(sel.Theme); ok {
		out.Theme = t.ID
	}
	if f, ok := c.format(sel.Format); ok {
		out.Format = f.ID
	}
	return out
}

func (c Catalog) theme(id string) (Theme, bool) {
	key := normalizeID(id)
	for _, t := range c.Themes {
		if strings.ToLower(t.ID) == key {
			return t, true
		}
		for _, alias := range t.Aliases {
			if strings.ToLower(alias) == key {
				return t, true
			}
		}
	}
	return Theme{}, false
}

func (c Catalog) format(id string) (Format, bool) {
	key := normalizeID(id)
	for _, f := range c.Formats {
		if strings.ToLower(f.ID) == key {
			return f, true
		}
	}
	return Format{}, false
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

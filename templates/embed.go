// Package templates embeds the portfolio catalog and theme bundles.
package templates

import "embed"

// FS holds catalog.toml and bundles/<theme>/<format>/.
//
//go:embed catalog.toml bundles
var FS embed.FS

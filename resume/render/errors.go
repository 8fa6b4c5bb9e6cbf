package render

import "errors"

var (
	// ErrBundleMissing reports a theme/format bundle without one of its required files.
	ErrBundleMissing = errors.New("template bundle missing")

	ErrInvalidCatalog = errors.New("invalid template catalog")
)

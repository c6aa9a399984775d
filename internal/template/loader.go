package template

import "context"

// Loader turns template definition files of one format into templates. The
// engine stays format-agnostic; concrete loaders live in their own packages
// (HCL, YAML) and are selected per file by extension.
type Loader interface {
	// Handles reports whether this loader understands the given file path.
	Handles(path string) bool
	// LoadFile parses one file into zero or more templates.
	LoadFile(ctx context.Context, path string) ([]*Template, error)
}

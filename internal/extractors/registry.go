package extractors

import (
	"path/filepath"
	"strings"

	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
)

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]driven.TextExtractor
}

// NewRegistry creates a registry over the given extractors. Later extractors
// win when two claim the same extension.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.TextExtractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// For returns the extractor for path's extension, or false when the
// extension is unsupported.
func (r *Registry) For(path string) (driven.TextExtractor, bool) {
	e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return e, ok
}

// Extensions returns all registered extensions, for diagnostics.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

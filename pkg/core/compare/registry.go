package compare

import "fmt"

// Extractor produces the fingerprint tuple for one file. A nil tuple
// plus a status string reports failure; extractors never panic on bad
// input.
type Extractor interface {
	Extract(path string) (Properties, string)
}

// Registry resolves declared types to extractors once at startup, so
// dispatch is a lookup instead of scattered availability flags. Types
// without a registered extractor report a clear status instead of
// failing the batch.
type Registry struct {
	extractors map[FileType]Extractor
}

// NewRegistry builds the default registry with every built-in
// extractor. STEP and IGES share the CAD measure pipeline over their
// own readers.
func NewRegistry() *Registry {
	return &Registry{extractors: map[FileType]Extractor{
		TypeSTEP: &cadExtractor{reader: stepReader{}},
		TypeIGES: &cadExtractor{reader: igesReader{}},
		TypeDXF:  dxfExtractor{},
		TypePDF:  pdfExtractor{},
		TypeDWG:  rawExtractor{},
	}}
}

// NewEmptyRegistry builds a registry with no extractors, useful for
// exercising the unavailable path.
func NewEmptyRegistry() *Registry {
	return &Registry{extractors: map[FileType]Extractor{}}
}

// Register installs or replaces the extractor for a type.
func (r *Registry) Register(t FileType, e Extractor) {
	r.extractors[t] = e
}

// IsAvailable reports whether the type has an extractor.
func (r *Registry) IsAvailable(t FileType) bool {
	_, ok := r.extractors[t]
	return ok
}

// Extract dispatches to the type's extractor.
func (r *Registry) Extract(t FileType, path string) (Properties, string) {
	e, ok := r.extractors[t]
	if !ok {
		return nil, fmt.Sprintf("Extrator %s indisponível", t)
	}
	return e.Extract(path)
}

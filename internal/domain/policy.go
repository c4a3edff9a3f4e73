package domain

import "strings"

// IndexingMode controls how the service maintains the index of a container.
type IndexingMode string

const (
	// IndexingModeConsistent updates the index synchronously with writes.
	IndexingModeConsistent IndexingMode = "consistent"
	// IndexingModeNone disables indexing entirely; every query is a scan.
	IndexingModeNone IndexingMode = "none"
)

// Index path suffixes recognised by the service.
const (
	pathWildcard       = "/*"
	pathScalarWildcard = "/?"
)

// IndexKind identifies the index structure built for a path.
type IndexKind string

const (
	IndexKindHash  IndexKind = "Hash"
	IndexKindRange IndexKind = "Range"
)

// IndexDataType identifies the value type an index covers.
type IndexDataType string

const (
	IndexDataTypeString IndexDataType = "String"
	IndexDataTypeNumber IndexDataType = "Number"
)

// MaxPrecision requests maximum index precision.
const MaxPrecision = -1

// Index describes one index structure on an included path.
type Index struct {
	Kind      IndexKind     `json:"kind,omitempty"`
	DataType  IndexDataType `json:"dataType,omitempty"`
	Precision int           `json:"precision,omitempty"`
}

// IncludedPath subscribes a document path glob to indexing.
type IncludedPath struct {
	Path    string  `json:"path"`
	Indexes []Index `json:"indexes,omitempty"`
}

// ExcludedPath removes a document path glob from indexing.
type ExcludedPath struct {
	Path string `json:"path"`
}

// IndexingPolicy is the container-level configuration controlling which
// document paths the service indexes. Excluded paths win over included ones.
type IndexingPolicy struct {
	IndexingMode  IndexingMode   `json:"indexingMode,omitempty"`
	Automatic     bool           `json:"automatic"`
	IncludedPaths []IncludedPath `json:"includedPaths,omitempty"`
	ExcludedPaths []ExcludedPath `json:"excludedPaths,omitempty"`
}

// DefaultIndexingPolicy returns the policy a container gets when created
// without one: consistent automatic indexing over every path.
func DefaultIndexingPolicy() *IndexingPolicy {
	return &IndexingPolicy{
		IndexingMode:  IndexingModeConsistent,
		Automatic:     true,
		IncludedPaths: []IncludedPath{{Path: "/*"}},
	}
}

// Indexed reports whether the scalar property at the given path (e.g.
// "/field1") is covered by the policy. With indexing mode none nothing is
// indexed regardless of paths.
func (p *IndexingPolicy) Indexed(path string) bool {
	if p == nil {
		return true
	}
	if p.IndexingMode == IndexingModeNone {
		return false
	}
	for _, ex := range p.ExcludedPaths {
		if pathMatches(ex.Path, path) {
			return false
		}
	}
	for _, in := range p.IncludedPaths {
		if pathMatches(in.Path, path) {
			return true
		}
	}
	return false
}

// pathMatches reports whether a policy path glob covers a concrete scalar
// property path. Supported glob forms: "/*" (everything), "/prop/*"
// (subtree), "/prop/?" (the scalar at /prop), and a bare "/prop".
func pathMatches(glob, path string) bool {
	if glob == pathWildcard {
		return true
	}
	if base, ok := strings.CutSuffix(glob, pathScalarWildcard); ok {
		return base == path
	}
	if base, ok := strings.CutSuffix(glob, pathWildcard); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return glob == path
}

package docdex

// IndexingMode controls how the service maintains a container's index.
type IndexingMode string

const (
	// IndexingModeConsistent updates the index synchronously with writes.
	IndexingModeConsistent IndexingMode = "consistent"
	// IndexingModeNone disables indexing; every query becomes a scan.
	IndexingModeNone IndexingMode = "none"
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
	Kind      IndexKind
	DataType  IndexDataType
	Precision int
}

// IncludedPath subscribes a document path glob to indexing, e.g. "/*" or
// "/field1/?".
type IncludedPath struct {
	Path    string
	Indexes []Index
}

// ExcludedPath removes a document path glob from indexing.
type ExcludedPath struct {
	Path string
}

// IndexingPolicy is the container-level configuration controlling which
// document paths the service indexes and how. Excluded paths win over
// included ones.
type IndexingPolicy struct {
	IndexingMode  IndexingMode
	Automatic     bool
	IncludedPaths []IncludedPath
	ExcludedPaths []ExcludedPath
}

// DatabaseInfo is the client-facing view of a database resource.
type DatabaseInfo struct {
	ID   string
	ETag string
}

// ContainerInfo is the client-facing view of a container resource.
type ContainerInfo struct {
	ID                string
	ETag              string
	PartitionKeyPaths []string
	IndexingPolicy    IndexingPolicy
}

// Package domain holds the wire-level resource model of a
// DocumentDB-compatible service: databases, containers, documents and the
// indexing policy attached to a container. Field names follow the REST
// protocol exactly; system properties carry the underscore prefix the
// service assigns.
package domain

// Resource holds the system properties common to every addressable resource.
type Resource struct {
	ID   string `json:"id,omitempty"`
	RID  string `json:"_rid,omitempty"`
	Self string `json:"_self,omitempty"`
	ETag string `json:"_etag,omitempty"`
	TS   int64  `json:"_ts,omitempty"`
}

// Database is a namespace for containers.
type Database struct {
	Resource
	Colls string `json:"_colls,omitempty"`
}

// Container holds documents together with the partition key definition and
// the indexing policy the service applies to them.
type Container struct {
	Resource
	PartitionKey   *PartitionKeyDefinition `json:"partitionKey,omitempty"`
	IndexingPolicy *IndexingPolicy         `json:"indexingPolicy,omitempty"`
	Docs           string                  `json:"_docs,omitempty"`
}

// PartitionKeyDefinition declares which document path routes a document to a
// physical partition.
type PartitionKeyDefinition struct {
	Paths []string `json:"paths"`
	Kind  string   `json:"kind,omitempty"`
}

// DatabasesResponse is the feed returned when listing databases.
type DatabasesResponse struct {
	RID       string     `json:"_rid,omitempty"`
	Databases []Database `json:"Databases"`
	Count     int        `json:"_count"`
}

// ContainersResponse is the feed returned when listing containers.
type ContainersResponse struct {
	RID        string      `json:"_rid,omitempty"`
	Containers []Container `json:"DocumentCollections"`
	Count      int         `json:"_count"`
}

// DocumentsResponse is the feed returned by document reads and queries.
// Documents stay raw so callers decide their own shape.
type DocumentsResponse struct {
	RID       string           `json:"_rid,omitempty"`
	Documents []map[string]any `json:"Documents"`
	Count     int              `json:"_count"`
}

// Query is the body of a query request.
type Query struct {
	Query      string           `json:"query"`
	Parameters []QueryParameter `json:"parameters,omitempty"`
}

// QueryParameter binds a @name placeholder to a value.
type QueryParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

package rest

// Protocol headers exchanged with the service.
const (
	HeaderDate           = "x-ms-date"
	HeaderVersion        = "x-ms-version"
	HeaderRequestCharge  = "x-ms-request-charge"
	HeaderIndexProgress  = "x-ms-documentdb-collection-index-transformation-progress"
	HeaderIsQuery        = "x-ms-documentdb-isquery"
	HeaderCrossPartition = "x-ms-documentdb-query-enablecrosspartition"
	HeaderContinuation   = "x-ms-continuation"
	HeaderMaxItemCount   = "x-ms-max-item-count"
	HeaderPartitionKey   = "x-ms-documentdb-partitionkey"
	HeaderActivityID     = "x-ms-activity-id"
)

// ContentTypeQueryJSON marks a request body as a query document.
const ContentTypeQueryJSON = "application/query+json"

// APIVersion is the protocol version sent with every request.
const APIVersion = "2018-12-31"

// Resource types used in request signing and resource links.
const (
	ResourceDatabases  = "dbs"
	ResourceContainers = "colls"
	ResourceDocuments  = "docs"
)

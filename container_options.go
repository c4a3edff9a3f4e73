package docdex

// ContainerOption configures container creation.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	partitionKeyPaths []string
	policy            *IndexingPolicy
}

// WithPartitionKey sets the partition key path, e.g. "/id".
func WithPartitionKey(path string) ContainerOption {
	return func(c *containerConfig) {
		c.partitionKeyPaths = []string{path}
	}
}

// WithIndexingPolicy sets the initial indexing policy. Without this option
// the service applies consistent automatic indexing over every path.
func WithIndexingPolicy(p IndexingPolicy) ContainerOption {
	return func(c *containerConfig) {
		c.policy = &p
	}
}

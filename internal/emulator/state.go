package emulator

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// database is one in-memory database with its containers.
type database struct {
	resource   domain.Resource
	containers map[string]*container
}

// container holds documents in insertion order plus the indexing policy and
// the clock of the simulated index transformation.
type container struct {
	resource     domain.Resource
	partitionKey *domain.PartitionKeyDefinition
	policy       *domain.IndexingPolicy

	docs  map[string]map[string]any
	order []string

	// reindexStart is zero when no transformation is pending.
	reindexStart    time.Time
	reindexDuration time.Duration
}

func newResource(id string) domain.Resource {
	rid := uuid.NewString()[:8]
	return domain.Resource{
		ID:   id,
		RID:  rid,
		ETag: uuid.NewString(),
		TS:   time.Now().Unix(),
	}
}

func (c *container) toDomain() domain.Container {
	return domain.Container{
		Resource:       c.resource,
		PartitionKey:   c.partitionKey,
		IndexingPolicy: c.policy,
	}
}

// indexProgress reports the percentage of the simulated transformation at
// the given instant. Monotonically non-decreasing for a fixed start.
func (c *container) indexProgress(now time.Time) int {
	if c.reindexStart.IsZero() || c.reindexDuration <= 0 {
		return 100
	}
	elapsed := now.Sub(c.reindexStart)
	if elapsed >= c.reindexDuration {
		return 100
	}
	if elapsed < 0 {
		return 0
	}
	return int(elapsed * 100 / c.reindexDuration)
}

// replacePolicy installs a new indexing policy and arms the transformation
// clock. Containers without documents transform instantly.
func (c *container) replacePolicy(p *domain.IndexingPolicy, now time.Time, duration time.Duration) {
	c.policy = p
	c.resource.ETag = uuid.NewString()
	c.resource.TS = now.Unix()
	if duration > 0 && len(c.docs) > 0 {
		c.reindexStart = now
		c.reindexDuration = duration
	} else {
		c.reindexStart = time.Time{}
	}
}

// partitionKeyProperty returns the property name of the partition key path,
// e.g. "id" for "/id". Empty when no partition key is defined.
func (c *container) partitionKeyProperty() string {
	if c.partitionKey == nil || len(c.partitionKey.Paths) == 0 {
		return ""
	}
	return strings.TrimPrefix(c.partitionKey.Paths[0], "/")
}

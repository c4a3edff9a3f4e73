package docdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/rest"
)

// ContainerService manages the containers of one database.
type ContainerService struct {
	database  string
	transport transport
	obs       *observer
}

// Create creates a new container. Returns ErrConflict if it already exists.
func (s *ContainerService) Create(
	ctx context.Context, id string, opts ...ContainerOption,
) (_ ContainerInfo, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("container.create", start, charge, err) }()

	cfg := &containerConfig{}
	for _, o := range opts {
		o(cfg)
	}

	body := domain.Container{Resource: domain.Resource{ID: id}}
	if len(cfg.partitionKeyPaths) > 0 {
		body.PartitionKey = &domain.PartitionKeyDefinition{
			Paths: cfg.partitionKeyPaths,
			Kind:  "Hash",
		}
	}
	if cfg.policy != nil {
		body.IndexingPolicy = toDomainPolicy(*cfg.policy)
	}

	link := "dbs/" + s.database
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceContainers,
		ResourceLink: link,
		Path:         "/" + link + "/colls",
		Body:         body,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("create container: %w", err)
	}
	return decodeContainer(resp.Body, "create container")
}

// CreateIfNotExists creates a container, treating an existing one as success.
func (s *ContainerService) CreateIfNotExists(
	ctx context.Context, id string, opts ...ContainerOption,
) (_ ContainerInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("container.ensure", start, 0, err) }()

	info, err := s.Create(ctx, id, opts...)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return ContainerInfo{}, fmt.Errorf("ensure container: %w", err)
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("ensure container: %w", err)
	}
	return existing, nil
}

// Get reads container metadata, including its current indexing policy.
func (s *ContainerService) Get(ctx context.Context, id string) (_ ContainerInfo, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("container.get", start, charge, err) }()

	link := "dbs/" + s.database + "/colls/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceContainers,
		ResourceLink: link,
		Path:         "/" + link,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("get container: %w", err)
	}
	return decodeContainer(resp.Body, "get container")
}

// List returns all containers of the database.
func (s *ContainerService) List(ctx context.Context) (_ []ContainerInfo, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("container.list", start, charge, err) }()

	link := "dbs/" + s.database
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceContainers,
		ResourceLink: link,
		Path:         "/" + link + "/colls",
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	var feed domain.ContainersResponse
	if err = json.Unmarshal(resp.Body, &feed); err != nil {
		return nil, fmt.Errorf("list containers: decode response: %w", err)
	}
	infos := make([]ContainerInfo, len(feed.Containers))
	for i, c := range feed.Containers {
		infos[i] = fromDomainContainer(c)
	}
	return infos, nil
}

// Delete removes a container and its documents.
func (s *ContainerService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("container.delete", start, charge, err) }()

	link := "dbs/" + s.database + "/colls/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodDelete,
		ResourceType: rest.ResourceContainers,
		ResourceLink: link,
		Path:         "/" + link,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return fmt.Errorf("delete container: %w", err)
	}
	return nil
}

// ReplaceIndexingPolicy replaces the container's indexing policy, keeping
// the rest of the container definition. The service rebuilds the index
// asynchronously; poll WaitForIndexTransformation for completion.
func (s *ContainerService) ReplaceIndexingPolicy(
	ctx context.Context, id string, policy IndexingPolicy,
) (_ ContainerInfo, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("container.replace_policy", start, charge, err) }()

	current, err := s.Get(ctx, id)
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("replace indexing policy: %w", err)
	}

	body := domain.Container{
		Resource:       domain.Resource{ID: id},
		IndexingPolicy: toDomainPolicy(policy),
	}
	if len(current.PartitionKeyPaths) > 0 {
		body.PartitionKey = &domain.PartitionKeyDefinition{
			Paths: current.PartitionKeyPaths,
			Kind:  "Hash",
		}
	}

	link := "dbs/" + s.database + "/colls/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodPut,
		ResourceType: rest.ResourceContainers,
		ResourceLink: link,
		Path:         "/" + link,
		Body:         body,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return ContainerInfo{}, fmt.Errorf("replace indexing policy: %w", err)
	}
	return decodeContainer(resp.Body, "replace indexing policy")
}

// IndexTransformationProgress reads the container and returns the index
// transformation percentage the service reports. 100 means no
// transformation is pending.
func (s *ContainerService) IndexTransformationProgress(
	ctx context.Context, id string,
) (_ int, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("container.index_progress", start, charge, err) }()

	link := "dbs/" + s.database + "/colls/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceContainers,
		ResourceLink: link,
		Path:         "/" + link,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return 0, fmt.Errorf("index transformation progress: %w", err)
	}
	if resp.IndexProgress < 0 {
		// Header absent: nothing in flight.
		return 100, nil
	}
	return resp.IndexProgress, nil
}

// WaitForIndexTransformation polls the transformation progress at a fixed
// interval until it reaches 100%. It loops indefinitely; cancel via ctx.
func (s *ContainerService) WaitForIndexTransformation(
	ctx context.Context, id string, interval time.Duration,
) error {
	for {
		progress, err := s.IndexTransformationProgress(ctx, id)
		if err != nil {
			return fmt.Errorf("wait for index transformation: %w", err)
		}
		if progress >= 100 {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for index transformation: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}

func decodeContainer(body []byte, op string) (ContainerInfo, error) {
	var c domain.Container
	if err := json.Unmarshal(body, &c); err != nil {
		return ContainerInfo{}, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return fromDomainContainer(c), nil
}

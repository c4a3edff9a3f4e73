package docdex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docdex/internal/rest"
)

// transport is the seam between services and the wire layer.
type transport interface {
	Do(ctx context.Context, req *rest.Request) (*rest.Response, error)
}

// Client is the docdex SDK entry point.
type Client struct {
	transport transport
	obs       *observer
}

// New creates a docdex Client. No network traffic happens until the first
// operation.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.endpoint == "" {
		return nil, errors.New("docdex: endpoint required (use WithEndpoint)")
	}
	if cfg.masterKey == "" {
		return nil, errors.New("docdex: master key required (use WithKey)")
	}

	tr, err := rest.New(cfg.endpoint, cfg.masterKey, cfg.httpClient)
	if err != nil {
		return nil, fmt.Errorf("docdex: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{transport: tr, obs: obs}, nil
}

// Databases returns the database management service.
func (c *Client) Databases() *DatabaseService {
	return &DatabaseService{transport: c.transport, obs: c.obs}
}

// Containers returns the container management service for a database.
func (c *Client) Containers(database string) *ContainerService {
	return &ContainerService{database: database, transport: c.transport, obs: c.obs}
}

// Items returns the item service for a container.
func (c *Client) Items(database, container string) *ItemService {
	return &ItemService{
		database:  database,
		container: container,
		transport: c.transport,
		obs:       c.obs,
	}
}

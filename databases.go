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

// DatabaseService manages databases.
type DatabaseService struct {
	transport transport
	obs       *observer
}

// Create creates a new database. Returns ErrConflict if it already exists.
func (s *DatabaseService) Create(ctx context.Context, id string) (_ DatabaseInfo, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("database.create", start, charge, err) }()

	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: "",
		Path:         "/dbs",
		Body:         domain.Database{Resource: domain.Resource{ID: id}},
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return DatabaseInfo{}, fmt.Errorf("create database: %w", err)
	}

	var db domain.Database
	if err = json.Unmarshal(resp.Body, &db); err != nil {
		return DatabaseInfo{}, fmt.Errorf("create database: decode response: %w", err)
	}
	return fromDomainDatabase(db), nil
}

// CreateIfNotExists creates a database, treating an existing one as success.
func (s *DatabaseService) CreateIfNotExists(ctx context.Context, id string) (_ DatabaseInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.ensure", start, 0, err) }()

	db, err := s.Create(ctx, id)
	if err == nil {
		return db, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return DatabaseInfo{}, fmt.Errorf("ensure database: %w", err)
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return DatabaseInfo{}, fmt.Errorf("ensure database: %w", err)
	}
	return existing, nil
}

// Get reads database metadata by id.
func (s *DatabaseService) Get(ctx context.Context, id string) (_ DatabaseInfo, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("database.get", start, charge, err) }()

	link := "dbs/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: link,
		Path:         "/" + link,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return DatabaseInfo{}, fmt.Errorf("get database: %w", err)
	}

	var db domain.Database
	if err = json.Unmarshal(resp.Body, &db); err != nil {
		return DatabaseInfo{}, fmt.Errorf("get database: decode response: %w", err)
	}
	return fromDomainDatabase(db), nil
}

// Delete removes a database and everything in it.
func (s *DatabaseService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("database.delete", start, charge, err) }()

	link := "dbs/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodDelete,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: link,
		Path:         "/" + link,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return fmt.Errorf("delete database: %w", err)
	}
	return nil
}

package docdex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/rest"
)

// ItemService reads, writes and queries the documents of one container.
type ItemService struct {
	database  string
	container string
	transport transport
	obs       *observer
}

// ItemResponse reports the outcome of a single-item write.
type ItemResponse struct {
	// ID is the item id, service-assigned when the item carried none.
	ID            string
	RequestCharge float64
}

// QueryResult carries the materialized result set of a query together with
// the metrics measured for it: wall-clock duration and the request charge
// summed over all continuation pages.
type QueryResult struct {
	Documents     []map[string]any
	Count         int
	RequestCharge float64
	Duration      time.Duration
}

// QueryOption configures a query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	parameters     []domain.QueryParameter
	crossPartition bool
	pageSize       int
}

// WithParameter binds a @name placeholder to a value.
func WithParameter(name string, value any) QueryOption {
	return func(c *queryConfig) {
		c.parameters = append(c.parameters, domain.QueryParameter{Name: name, Value: value})
	}
}

// WithCrossPartition lets the query fan out across physical partitions.
// Required when the filter is not bound to a single partition key value.
func WithCrossPartition() QueryOption {
	return func(c *queryConfig) {
		c.crossPartition = true
	}
}

// WithPageSize sets the maximum item count per continuation page.
func WithPageSize(n int) QueryOption {
	return func(c *queryConfig) {
		c.pageSize = n
	}
}

// Create inserts a new document. Returns ErrConflict when a document with
// the same id already exists.
func (s *ItemService) Create(ctx context.Context, item any) (_ ItemResponse, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("item.create", start, charge, err) }()

	link := "dbs/" + s.database + "/colls/" + s.container
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDocuments,
		ResourceLink: link,
		Path:         "/" + link + "/docs",
		Body:         item,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return ItemResponse{}, fmt.Errorf("create item: %w", err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err = json.Unmarshal(resp.Body, &created); err != nil {
		return ItemResponse{}, fmt.Errorf("create item: decode response: %w", err)
	}
	return ItemResponse{ID: created.ID, RequestCharge: resp.RequestCharge}, nil
}

// Get reads one document by id.
func (s *ItemService) Get(ctx context.Context, id string) (_ map[string]any, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("item.get", start, charge, err) }()

	link := "dbs/" + s.database + "/colls/" + s.container + "/docs/" + id
	resp, err := s.transport.Do(ctx, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceDocuments,
		ResourceLink: link,
		Path:         "/" + link,
	})
	if resp != nil {
		charge = resp.RequestCharge
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	var doc map[string]any
	if err = json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, fmt.Errorf("get item: decode response: %w", err)
	}
	return doc, nil
}

// Count returns the number of documents in the container.
func (s *ItemService) Count(ctx context.Context) (int, error) {
	res, err := s.Query(ctx, "SELECT * FROM c", WithCrossPartition())
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return res.Count, nil
}

// Query runs a SQL-like filter query, materializes every continuation page
// and reports count, elapsed wall-clock time and the summed request charge.
func (s *ItemService) Query(
	ctx context.Context, query string, opts ...QueryOption,
) (_ *QueryResult, err error) {
	start := time.Now()
	var charge float64
	defer func() { s.obs.observe("item.query", start, charge, err) }()

	cfg := &queryConfig{}
	for _, o := range opts {
		o(cfg)
	}

	headers := map[string]string{
		rest.HeaderIsQuery: "true",
		"Content-Type":     rest.ContentTypeQueryJSON,
	}
	if cfg.crossPartition {
		headers[rest.HeaderCrossPartition] = "true"
	}
	if cfg.pageSize > 0 {
		headers[rest.HeaderMaxItemCount] = strconv.Itoa(cfg.pageSize)
	}

	link := "dbs/" + s.database + "/colls/" + s.container
	result := &QueryResult{}
	continuation := ""

	for {
		pageHeaders := headers
		if continuation != "" {
			pageHeaders = make(map[string]string, len(headers)+1)
			for k, v := range headers {
				pageHeaders[k] = v
			}
			pageHeaders[rest.HeaderContinuation] = continuation
		}

		resp, err := s.transport.Do(ctx, &rest.Request{
			Verb:         http.MethodPost,
			ResourceType: rest.ResourceDocuments,
			ResourceLink: link,
			Path:         "/" + link + "/docs",
			Body:         domain.Query{Query: query, Parameters: cfg.parameters},
			Headers:      pageHeaders,
		})
		if resp != nil {
			charge += resp.RequestCharge
		}
		if err != nil {
			return nil, fmt.Errorf("query items: %w", err)
		}

		var feed domain.DocumentsResponse
		if err := json.Unmarshal(resp.Body, &feed); err != nil {
			return nil, fmt.Errorf("query items: decode response: %w", err)
		}
		result.Documents = append(result.Documents, feed.Documents...)

		if resp.Continuation == "" {
			break
		}
		continuation = resp.Continuation
	}

	result.Count = len(result.Documents)
	result.RequestCharge = charge
	result.Duration = time.Since(start)
	return result, nil
}

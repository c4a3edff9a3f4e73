package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/rest"
)

func newTestServer(t *testing.T, opts ...Option) *rest.Transport {
	t.Helper()
	srv := httptest.NewServer(New(opts...).Handler())
	t.Cleanup(srv.Close)
	tr, err := rest.New(srv.URL, DefaultKey, srv.Client())
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	return tr
}

func mustDo(t *testing.T, tr *rest.Transport, req *rest.Request) *rest.Response {
	t.Helper()
	resp, err := tr.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Verb, req.Path, err)
	}
	return resp
}

func createDatabase(t *testing.T, tr *rest.Transport, id string) {
	t.Helper()
	mustDo(t, tr, &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: "",
		Path:         "/dbs",
		Body:         domain.Database{Resource: domain.Resource{ID: id}},
	})
}

func createContainer(t *testing.T, tr *rest.Transport, db string, c domain.Container) {
	t.Helper()
	mustDo(t, tr, &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceContainers,
		ResourceLink: "dbs/" + db,
		Path:         "/dbs/" + db + "/colls",
		Body:         c,
	})
}

func insertDocument(t *testing.T, tr *rest.Transport, db, coll string, doc map[string]any) *rest.Response {
	t.Helper()
	return mustDo(t, tr, &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDocuments,
		ResourceLink: "dbs/" + db + "/colls/" + coll,
		Path:         "/dbs/" + db + "/colls/" + coll + "/docs",
		Body:         doc,
	})
}

func queryRequest(db, coll string, q domain.Query, headers map[string]string) *rest.Request {
	if headers == nil {
		headers = map[string]string{}
	}
	headers[rest.HeaderIsQuery] = "true"
	headers["Content-Type"] = rest.ContentTypeQueryJSON
	return &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDocuments,
		ResourceLink: "dbs/" + db + "/colls/" + coll,
		Path:         "/dbs/" + db + "/colls/" + coll + "/docs",
		Body:         q,
		Headers:      headers,
	}
}

func TestDatabaseLifecycle(t *testing.T) {
	tr := newTestServer(t)

	createDatabase(t, tr, "tour")

	// Duplicate create conflicts.
	_, err := tr.Do(context.Background(), &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDatabases,
		Path:         "/dbs",
		Body:         domain.Database{Resource: domain.Resource{ID: "tour"}},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate create: got %v, want ErrConflict", err)
	}

	resp := mustDo(t, tr, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: "dbs/tour",
		Path:         "/dbs/tour",
	})
	var db domain.Database
	if err := json.Unmarshal(resp.Body, &db); err != nil {
		t.Fatalf("decode database: %v", err)
	}
	if db.ID != "tour" || db.RID == "" || db.ETag == "" {
		t.Errorf("unexpected database resource: %+v", db)
	}
	if resp.RequestCharge <= 0 {
		t.Error("read should report a request charge")
	}

	mustDo(t, tr, &rest.Request{
		Verb:         http.MethodDelete,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: "dbs/tour",
		Path:         "/dbs/tour",
	})
	_, err = tr.Do(context.Background(), &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceDatabases,
		ResourceLink: "dbs/tour",
		Path:         "/dbs/tour",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("read after delete: got %v, want ErrNotFound", err)
	}
}

func TestContainerDefaultPolicy(t *testing.T) {
	tr := newTestServer(t)
	createDatabase(t, tr, "tour")
	createContainer(t, tr, "tour", domain.Container{
		Resource:     domain.Resource{ID: "samples"},
		PartitionKey: &domain.PartitionKeyDefinition{Paths: []string{"/id"}, Kind: "Hash"},
	})

	resp := mustDo(t, tr, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceContainers,
		ResourceLink: "dbs/tour/colls/samples",
		Path:         "/dbs/tour/colls/samples",
	})
	var c domain.Container
	if err := json.Unmarshal(resp.Body, &c); err != nil {
		t.Fatalf("decode container: %v", err)
	}
	if c.IndexingPolicy == nil || c.IndexingPolicy.IndexingMode != domain.IndexingModeConsistent {
		t.Fatalf("container without a policy should get the default, got %+v", c.IndexingPolicy)
	}
	if resp.IndexProgress != 100 {
		t.Errorf("fresh container progress = %d, want 100", resp.IndexProgress)
	}
}

func TestIndexTransformationProgressAdvances(t *testing.T) {
	clock := &fakeClock{now: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)}
	tr := newTestServer(t,
		WithReindexDuration(10*time.Second),
		WithClock(clock.Now),
	)
	createDatabase(t, tr, "tour")
	createContainer(t, tr, "tour", domain.Container{Resource: domain.Resource{ID: "samples"}})
	insertDocument(t, tr, "tour", "samples", map[string]any{"id": "1", "field1": "a"})

	mustDo(t, tr, &rest.Request{
		Verb:         http.MethodPut,
		ResourceType: rest.ResourceContainers,
		ResourceLink: "dbs/tour/colls/samples",
		Path:         "/dbs/tour/colls/samples",
		Body: domain.Container{
			Resource:       domain.Resource{ID: "samples"},
			IndexingPolicy: &domain.IndexingPolicy{IndexingMode: domain.IndexingModeNone},
		},
	})

	read := func() int {
		resp := mustDo(t, tr, &rest.Request{
			Verb:         http.MethodGet,
			ResourceType: rest.ResourceContainers,
			ResourceLink: "dbs/tour/colls/samples",
			Path:         "/dbs/tour/colls/samples",
		})
		return resp.IndexProgress
	}

	if got := read(); got != 0 {
		t.Errorf("progress at t0 = %d, want 0", got)
	}
	clock.Advance(5 * time.Second)
	if got := read(); got != 50 {
		t.Errorf("progress at t+5s = %d, want 50", got)
	}
	clock.Advance(5 * time.Second)
	if got := read(); got != 100 {
		t.Errorf("progress at t+10s = %d, want 100", got)
	}
}

// fakeClock is a test clock safe to advance while the server reads it.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestQueryPagingAndCharge(t *testing.T) {
	tr := newTestServer(t)
	createDatabase(t, tr, "tour")
	createContainer(t, tr, "tour", domain.Container{
		Resource:     domain.Resource{ID: "samples"},
		PartitionKey: &domain.PartitionKeyDefinition{Paths: []string{"/id"}, Kind: "Hash"},
	})
	for _, doc := range []map[string]any{
		{"id": "1", "field1": "a", "field2": 1},
		{"id": "2", "field1": "a", "field2": 2},
		{"id": "3", "field1": "b", "field2": 3},
	} {
		insertDocument(t, tr, "tour", "samples", doc)
	}

	decode := func(resp *rest.Response) domain.DocumentsResponse {
		var feed domain.DocumentsResponse
		if err := json.Unmarshal(resp.Body, &feed); err != nil {
			t.Fatalf("decode feed: %v", err)
		}
		return feed
	}

	// Filter without cross-partition opt-in fails: field1 is not the
	// partition key.
	q := domain.Query{Query: "SELECT * FROM c WHERE c.field1 = 'a'"}
	_, err := tr.Do(context.Background(), queryRequest("tour", "samples", q, nil))
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("cross-partition query without opt-in: got %v, want ErrBadRequest", err)
	}

	cross := map[string]string{rest.HeaderCrossPartition: "true"}
	feed := decode(mustDo(t, tr, queryRequest("tour", "samples", q, cross)))
	if feed.Count != 2 || len(feed.Documents) != 2 {
		t.Fatalf("filtered query returned %d documents, want 2", len(feed.Documents))
	}

	// Partition-key equality needs no opt-in.
	pk := domain.Query{Query: "SELECT * FROM c WHERE c.id = '3'"}
	feed = decode(mustDo(t, tr, queryRequest("tour", "samples", pk, nil)))
	if len(feed.Documents) != 1 || feed.Documents[0]["field1"] != "b" {
		t.Fatalf("partition-key query returned %+v", feed.Documents)
	}

	// Page through SELECT * with max-item-count 2.
	all := domain.Query{Query: "SELECT * FROM c"}
	page1Headers := map[string]string{
		rest.HeaderCrossPartition: "true",
		rest.HeaderMaxItemCount:   "2",
	}
	resp := mustDo(t, tr, queryRequest("tour", "samples", all, page1Headers))
	if got := decode(resp); got.Count != 2 {
		t.Fatalf("first page count = %d, want 2", got.Count)
	}
	if resp.Continuation == "" {
		t.Fatal("first page should carry a continuation token")
	}
	page2Headers := map[string]string{
		rest.HeaderCrossPartition: "true",
		rest.HeaderMaxItemCount:   "2",
		rest.HeaderContinuation:   resp.Continuation,
	}
	resp = mustDo(t, tr, queryRequest("tour", "samples", all, page2Headers))
	if got := decode(resp); got.Count != 1 {
		t.Fatalf("second page count = %d, want 1", got.Count)
	}
	if resp.Continuation != "" {
		t.Error("final page should not carry a continuation token")
	}
	if resp.RequestCharge <= 0 {
		t.Error("query should report a request charge")
	}
}

func TestQueryChargeDropsAfterIndexingOff(t *testing.T) {
	tr := newTestServer(t, WithReindexDuration(0))
	createDatabase(t, tr, "tour")
	createContainer(t, tr, "tour", domain.Container{Resource: domain.Resource{ID: "samples"}})
	for i := range 50 {
		insertDocument(t, tr, "tour", "samples", map[string]any{
			"field1": "Field_0",
			"field2": i,
		})
	}

	q := domain.Query{Query: "SELECT * FROM c WHERE c.field2 = @val",
		Parameters: []domain.QueryParameter{{Name: "@val", Value: 7}}}
	cross := map[string]string{rest.HeaderCrossPartition: "true"}

	indexed := mustDo(t, tr, queryRequest("tour", "samples", q, cross))

	mustDo(t, tr, &rest.Request{
		Verb:         http.MethodPut,
		ResourceType: rest.ResourceContainers,
		ResourceLink: "dbs/tour/colls/samples",
		Path:         "/dbs/tour/colls/samples",
		Body: domain.Container{
			Resource:       domain.Resource{ID: "samples"},
			IndexingPolicy: &domain.IndexingPolicy{IndexingMode: domain.IndexingModeNone, Automatic: false},
		},
	})

	scan := mustDo(t, tr, queryRequest("tour", "samples", q, cross))
	if scan.RequestCharge <= indexed.RequestCharge {
		t.Errorf("scan charge %v should exceed indexed charge %v",
			scan.RequestCharge, indexed.RequestCharge)
	}

	// Results do not change, only the cost does.
	var a, b domain.DocumentsResponse
	if err := json.Unmarshal(indexed.Body, &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(scan.Body, &b); err != nil {
		t.Fatal(err)
	}
	if a.Count != 1 || b.Count != a.Count {
		t.Errorf("result counts diverged: indexed %d, scan %d", a.Count, b.Count)
	}
}

func TestDocumentCreateAssignsID(t *testing.T) {
	tr := newTestServer(t)
	createDatabase(t, tr, "tour")
	createContainer(t, tr, "tour", domain.Container{Resource: domain.Resource{ID: "samples"}})

	resp := insertDocument(t, tr, "tour", "samples", map[string]any{"field1": "a"})
	var doc map[string]any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	id, _ := doc["id"].(string)
	if id == "" {
		t.Fatal("create should assign an id when the document has none")
	}
	if doc["_etag"] == nil || doc["_ts"] == nil {
		t.Errorf("created document missing system properties: %+v", doc)
	}

	got := mustDo(t, tr, &rest.Request{
		Verb:         http.MethodGet,
		ResourceType: rest.ResourceDocuments,
		ResourceLink: "dbs/tour/colls/samples/docs/" + id,
		Path:         "/dbs/tour/colls/samples/docs/" + id,
	})
	if got.RequestCharge != 1.0 {
		t.Errorf("point read charge = %v, want 1.0", got.RequestCharge)
	}
}

func TestRejectsBadKey(t *testing.T) {
	srv := httptest.NewServer(New().Handler())
	t.Cleanup(srv.Close)

	wrongKey := "b3RoZXIga2V5IG90aGVyIGtleSBvdGhlciBrZXkgb3RoZXIga2V5IQ=="
	tr, err := rest.New(srv.URL, wrongKey, srv.Client())
	if err != nil {
		t.Fatalf("rest.New: %v", err)
	}
	_, err = tr.Do(context.Background(), &rest.Request{
		Verb:         http.MethodPost,
		ResourceType: rest.ResourceDatabases,
		Path:         "/dbs",
		Body:         domain.Database{Resource: domain.Resource{ID: "tour"}},
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("wrong key: got %v, want ErrUnauthorized", err)
	}
}

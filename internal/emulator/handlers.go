package emulator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/rest"
)

const defaultPageSize = 1000

// --- databases ---

func (s *Server) createDatabase(w http.ResponseWriter, r *http.Request) {
	var body domain.Database
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "database body must carry an id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dbs[body.ID]; ok {
		writeError(w, http.StatusConflict, "Conflict", fmt.Sprintf("database %q already exists", body.ID))
		return
	}
	db := &database{
		resource:   newResource(body.ID),
		containers: make(map[string]*container),
	}
	s.dbs[body.ID] = db
	logpkg.FromContext(r.Context()).Info("database created", zap.String("id", body.ID))

	writeJSON(w, http.StatusCreated, chargeResource, domain.Database{Resource: db.resource})
}

func (s *Server) getDatabase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[chi.URLParam(r, "db")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "database not found")
		return
	}
	writeJSON(w, http.StatusOK, chargeRead, domain.Database{Resource: db.resource})
}

func (s *Server) deleteDatabase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "db")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dbs[id]; !ok {
		writeError(w, http.StatusNotFound, "NotFound", "database not found")
		return
	}
	delete(s.dbs, id)
	logpkg.FromContext(r.Context()).Info("database deleted", zap.String("id", id))

	w.Header().Set(rest.HeaderRequestCharge, formatCharge(chargeResource))
	w.WriteHeader(http.StatusNoContent)
}

// --- containers ---

func (s *Server) createContainer(w http.ResponseWriter, r *http.Request) {
	var body domain.Container
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "container body must carry an id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[chi.URLParam(r, "db")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "database not found")
		return
	}
	if _, ok := db.containers[body.ID]; ok {
		writeError(w, http.StatusConflict, "Conflict", fmt.Sprintf("container %q already exists", body.ID))
		return
	}

	policy := body.IndexingPolicy
	if policy == nil {
		policy = domain.DefaultIndexingPolicy()
	}
	c := &container{
		resource:     newResource(body.ID),
		partitionKey: body.PartitionKey,
		policy:       policy,
		docs:         make(map[string]map[string]any),
	}
	db.containers[body.ID] = c
	logpkg.FromContext(r.Context()).Info("container created",
		zap.String("db", chi.URLParam(r, "db")),
		zap.String("id", body.ID),
	)

	writeJSON(w, http.StatusCreated, chargeResource, c.toDomain())
}

func (s *Server) listContainers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[chi.URLParam(r, "db")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "database not found")
		return
	}

	feed := domain.ContainersResponse{
		RID:        db.resource.RID,
		Containers: make([]domain.Container, 0, len(db.containers)),
	}
	for _, c := range db.containers {
		feed.Containers = append(feed.Containers, c.toDomain())
	}
	feed.Count = len(feed.Containers)

	writeJSON(w, http.StatusOK, chargeRead, feed)
}

func (s *Server) getContainer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, errStatus := s.lookupContainer(r)
	if errStatus != 0 {
		writeError(w, errStatus, http.StatusText(errStatus), "container not found")
		return
	}

	w.Header().Set(rest.HeaderIndexProgress, strconv.Itoa(c.indexProgress(s.now())))
	writeJSON(w, http.StatusOK, chargeRead, c.toDomain())
}

func (s *Server) replaceContainer(w http.ResponseWriter, r *http.Request) {
	var body domain.Container
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid container body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, errStatus := s.lookupContainer(r)
	if errStatus != 0 {
		writeError(w, errStatus, http.StatusText(errStatus), "container not found")
		return
	}

	policy := body.IndexingPolicy
	if policy == nil {
		policy = domain.DefaultIndexingPolicy()
	}
	c.replacePolicy(policy, s.now(), s.reindexDuration)
	logpkg.FromContext(r.Context()).Info("indexing policy replaced",
		zap.String("container", c.resource.ID),
		zap.String("mode", string(policy.IndexingMode)),
	)

	w.Header().Set(rest.HeaderIndexProgress, strconv.Itoa(c.indexProgress(s.now())))
	writeJSON(w, http.StatusOK, chargeResource, c.toDomain())
}

func (s *Server) deleteContainer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.dbs[chi.URLParam(r, "db")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "database not found")
		return
	}
	id := chi.URLParam(r, "coll")
	if _, ok := db.containers[id]; !ok {
		writeError(w, http.StatusNotFound, "NotFound", "container not found")
		return
	}
	delete(db.containers, id)

	w.Header().Set(rest.HeaderRequestCharge, formatCharge(chargeResource))
	w.WriteHeader(http.StatusNoContent)
}

// --- documents ---

// createOrQueryDocuments serves POST on the docs feed: a query when the
// isquery header is set, a document insert otherwise.
func (s *Server) createOrQueryDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(rest.HeaderIsQuery) == "true" {
		s.queryDocuments(w, r)
		return
	}
	s.createDocument(w, r)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid document body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, errStatus := s.lookupContainer(r)
	if errStatus != 0 {
		writeError(w, errStatus, http.StatusText(errStatus), "container not found")
		return
	}

	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
		doc["id"] = id
	}
	if _, ok := c.docs[id]; ok {
		writeError(w, http.StatusConflict, "Conflict", fmt.Sprintf("document %q already exists", id))
		return
	}

	now := s.now()
	doc["_rid"] = uuid.NewString()[:8]
	doc["_etag"] = uuid.NewString()
	doc["_ts"] = now.Unix()
	c.docs[id] = doc
	c.order = append(c.order, id)

	writeJSON(w, http.StatusCreated, writeCharge(doc, c.policy), doc)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, errStatus := s.lookupContainer(r)
	if errStatus != 0 {
		writeError(w, errStatus, http.StatusText(errStatus), "container not found")
		return
	}
	doc, ok := c.docs[chi.URLParam(r, "doc")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "document not found")
		return
	}
	writeJSON(w, http.StatusOK, chargeRead, doc)
}

func (s *Server) queryDocuments(w http.ResponseWriter, r *http.Request) {
	var q domain.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid query body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, errStatus := s.lookupContainer(r)
	if errStatus != 0 {
		writeError(w, errStatus, http.StatusText(errStatus), "container not found")
		return
	}

	f, err := parseQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	// Any query not pinned to the partition key must opt into fan-out.
	crossPartition := r.Header.Get(rest.HeaderCrossPartition) == "true"
	if !crossPartition && (f.all || f.property != c.partitionKeyProperty()) {
		writeError(w, http.StatusBadRequest, "BadRequest",
			"cross partition query is required but disabled; set the enable-cross-partition header")
		return
	}

	matched := make([]map[string]any, 0)
	for _, id := range c.order {
		if f.matches(c.docs[id]) {
			matched = append(matched, c.docs[id])
		}
	}

	offset := 0
	if token := r.Header.Get(rest.HeaderContinuation); token != "" {
		parsed, err := strconv.Atoi(token)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "BadRequest", "invalid continuation token")
			return
		}
		offset = parsed
	}
	pageSize := defaultPageSize
	if raw := r.Header.Get(rest.HeaderMaxItemCount); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}

	end := min(offset+pageSize, len(matched))
	if offset > end {
		offset = end
	}
	page := matched[offset:end]
	if end < len(matched) {
		w.Header().Set(rest.HeaderContinuation, strconv.Itoa(end))
	}

	charge := queryCharge(f, c.policy, len(c.order), len(page))
	feed := domain.DocumentsResponse{
		RID:       c.resource.RID,
		Documents: page,
		Count:     len(page),
	}
	writeJSON(w, http.StatusOK, charge, feed)
}

// --- helpers ---

// lookupContainer resolves db/coll URL params. Returns the container and 0,
// or a non-zero HTTP status on failure. Callers hold s.mu.
func (s *Server) lookupContainer(r *http.Request) (*container, int) {
	db, ok := s.dbs[chi.URLParam(r, "db")]
	if !ok {
		return nil, http.StatusNotFound
	}
	c, ok := db.containers[chi.URLParam(r, "coll")]
	if !ok {
		return nil, http.StatusNotFound
	}
	return c, 0
}

func writeJSON(w http.ResponseWriter, status int, charge float64, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(rest.HeaderRequestCharge, formatCharge(charge))
	w.Header().Set(rest.HeaderActivityID, uuid.NewString())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

func formatCharge(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}

// Package emulator provides a lightweight in-process stand-in for a
// DocumentDB-compatible service. It implements the resource surface the SDK
// uses (databases, containers, documents, queries, indexing policies) with
// in-memory state, a synthetic request-charge model and a simulated index
// transformation clock, so the tour and the test suite run without a remote
// account. It is a test double, not a database engine: queries are evaluated
// naively and the indexing policy only influences the reported charge.
package emulator

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/rest"
)

// DefaultKey is the well-known master key the emulator accepts by default.
const DefaultKey = "C2y6yDjf5/R+ob0N8A7Cgv30VRDJIWEHLM+4QDU5DE2nQ9nDuVTqobD4b8mGGyPMbIZnqyMsEcaGQy67XIw/Jw=="

// defaultReindexDuration is how long a simulated index transformation takes.
const defaultReindexDuration = 3 * time.Second

// Server is the emulator instance. Safe for concurrent use.
type Server struct {
	mu  sync.Mutex
	dbs map[string]*database

	key             []byte
	reindexDuration time.Duration
	logger          *zap.Logger
	now             func() time.Time

	handler http.Handler
}

// Option configures the emulator.
type Option func(*Server)

// WithKey overrides the accepted base64 master key.
func WithKey(base64Key string) Option {
	return func(s *Server) {
		if raw, err := rest.DecodeKey(base64Key); err == nil {
			s.key = raw
		}
	}
}

// WithReindexDuration sets how long a simulated index transformation takes
// after an indexing policy replace. 0 completes transformations instantly.
func WithReindexDuration(d time.Duration) Option {
	return func(s *Server) {
		s.reindexDuration = d
	}
}

// WithLogger sets the request logger. Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithClock overrides the emulator clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates an emulator server.
func New(opts ...Option) *Server {
	key, _ := rest.DecodeKey(DefaultKey)
	s := &Server{
		dbs:             make(map[string]*database),
		key:             key,
		reindexDuration: defaultReindexDuration,
		logger:          zap.NewNop(),
		now:             time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler implementing the service surface.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(metrics.Middleware())
	r.Use(s.requestLogger)
	r.Use(s.authMiddleware)

	r.Post("/dbs", s.createDatabase)
	r.Route("/dbs/{db}", func(r chi.Router) {
		r.Get("/", s.getDatabase)
		r.Delete("/", s.deleteDatabase)

		r.Post("/colls", s.createContainer)
		r.Get("/colls", s.listContainers)
		r.Route("/colls/{coll}", func(r chi.Router) {
			r.Get("/", s.getContainer)
			r.Put("/", s.replaceContainer)
			r.Delete("/", s.deleteContainer)

			r.Post("/docs", s.createOrQueryDocuments)
			r.Get("/docs/{doc}", s.getDocument)
		})
	})
	return r
}

// requestLogger stores a per-request logger in the context and emits one
// line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := s.logger.With(
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
		)
		ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		reqLogger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

// authMiddleware verifies the master-key signature of every request.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		date := r.Header.Get(rest.HeaderDate)
		if auth == "" || date == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "missing authorization or date header")
			return
		}

		resourceType, resourceLink := rest.SplitLink(r.URL.Path)
		if !rest.VerifyAuth(s.key, auth, r.Method, resourceType, resourceLink, date) {
			s.logger.Debug("signature mismatch",
				zap.String("verb", r.Method),
				zap.String("resource_type", resourceType),
				zap.String("resource_link", resourceLink),
			)
			writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid master key signature")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/docdex/internal/domain"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *Transport {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tr, err := New(srv.URL, testKey, srv.Client())
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	return tr
}

func TestDo_SendsSignedHeaders(t *testing.T) {
	var gotAuth, gotDate, gotVersion string
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDate = r.Header.Get(HeaderDate)
		gotVersion = r.Header.Get(HeaderVersion)
		w.WriteHeader(http.StatusOK)
	})

	_, err := tr.Do(context.Background(), &Request{
		Verb:         http.MethodGet,
		ResourceType: ResourceDatabases,
		ResourceLink: "dbs/tour",
		Path:         "/dbs/tour",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotVersion != APIVersion {
		t.Errorf("version header = %q, want %q", gotVersion, APIVersion)
	}
	key, _ := DecodeKey(testKey)
	if !VerifyAuth(key, gotAuth, http.MethodGet, ResourceDatabases, "dbs/tour", gotDate) {
		t.Error("authorization header does not verify against sent date")
	}
}

func TestDo_ParsesMetricHeaders(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRequestCharge, "12.34")
		w.Header().Set(HeaderIndexProgress, "42")
		w.Header().Set(HeaderContinuation, "token-1")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := tr.Do(context.Background(), &Request{
		Verb: http.MethodGet, ResourceType: ResourceDatabases, Path: "/dbs/tour",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RequestCharge != 12.34 {
		t.Errorf("charge = %v, want 12.34", resp.RequestCharge)
	}
	if resp.IndexProgress != 42 {
		t.Errorf("progress = %d, want 42", resp.IndexProgress)
	}
	if resp.Continuation != "token-1" {
		t.Errorf("continuation = %q, want token-1", resp.Continuation)
	}
}

func TestDo_AbsentProgressIsMinusOne(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	resp, err := tr.Do(context.Background(), &Request{
		Verb: http.MethodGet, ResourceType: ResourceDatabases, Path: "/dbs/tour",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IndexProgress != -1 {
		t.Errorf("progress = %d, want -1 when header absent", resp.IndexProgress)
	}
}

func TestDo_StatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrConflict},
		{http.StatusBadRequest, domain.ErrBadRequest},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusPreconditionFailed, domain.ErrPreconditionFailed},
		{http.StatusTooManyRequests, domain.ErrThrottled},
	}

	for _, tt := range tests {
		tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := tr.Do(context.Background(), &Request{
			Verb: http.MethodGet, ResourceType: ResourceDatabases, Path: "/dbs/x",
		})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestDo_UnmappedStatusKeepsMessage(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":"ServiceUnavailable","message":"try later"}`))
	})
	_, err := tr.Do(context.Background(), &Request{
		Verb: http.MethodGet, ResourceType: ResourceDatabases, Path: "/dbs/x",
	})
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if got := err.Error(); !strings.Contains(got, "try later") {
		t.Errorf("error %q does not carry service message", got)
	}
}

package docdex

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/docdex/internal/rest"
)

// mockTransport implements the transport seam for tests. It records every
// request and replays canned responses per call.
type mockTransport struct {
	doFn     func(ctx context.Context, req *rest.Request) (*rest.Response, error)
	requests []*rest.Request
}

func (m *mockTransport) Do(ctx context.Context, req *rest.Request) (*rest.Response, error) {
	m.requests = append(m.requests, req)
	if m.doFn != nil {
		return m.doFn(ctx, req)
	}
	return &rest.Response{Status: 200, Body: []byte("{}"), IndexProgress: -1}, nil
}

// jsonBody marshals v for a canned response, failing the test on error.
func jsonBody(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal response fixture: %v", err)
	}
	return data
}

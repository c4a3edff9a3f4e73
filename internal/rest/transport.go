// Package rest implements the HTTP wire protocol of a DocumentDB-compatible
// service: master-key request signing, protocol headers and status-to-error
// mapping. It carries no retry logic; callers decide how to react to
// individual failures.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Request describes one service call.
type Request struct {
	Verb         string
	ResourceType string
	// ResourceLink is the signed resource address, e.g. "dbs/tour/colls/docs".
	// For creates on a feed it addresses the parent resource.
	ResourceLink string
	// Path is the URL path, e.g. "/dbs/tour/colls".
	Path    string
	Body    any
	Headers map[string]string
}

// Response carries the decoded body plus the metric headers the service
// reports per operation.
type Response struct {
	Status        int
	Body          []byte
	RequestCharge float64
	// IndexProgress is the index transformation percentage, -1 when the
	// service did not report one.
	IndexProgress int
	Continuation  string
}

// Transport performs signed HTTP calls against one service endpoint.
type Transport struct {
	endpoint string
	key      []byte
	client   *http.Client
	now      func() time.Time
}

// New creates a transport for the endpoint using a base64 master key.
func New(endpoint, masterKey string, client *http.Client) (*Transport, error) {
	key, err := DecodeKey(masterKey)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Transport{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		key:      key,
		client:   client,
		now:      time.Now,
	}, nil
}

// Do executes one signed request and maps error statuses to domain sentinels.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Verb, t.endpoint+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	date := t.now().UTC().Format(http.TimeFormat)
	httpReq.Header.Set(HeaderDate, date)
	httpReq.Header.Set(HeaderVersion, APIVersion)
	httpReq.Header.Set("Authorization", AuthToken(t.key, req.Verb, req.ResourceType, req.ResourceLink, date))
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Verb, req.Path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	resp := &Response{
		Status:        httpResp.StatusCode,
		Body:          data,
		RequestCharge: parseCharge(httpResp.Header.Get(HeaderRequestCharge)),
		IndexProgress: parseProgress(httpResp.Header.Get(HeaderIndexProgress)),
		Continuation:  httpResp.Header.Get(HeaderContinuation),
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, statusError(httpResp.StatusCode, req.Verb, req.Path, data)
	}
	return resp, nil
}

// statusError maps an HTTP error status to a domain sentinel, keeping the
// service message for context.
func statusError(status int, verb, path string, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	var sentinel error
	switch status {
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrConflict
	case http.StatusBadRequest:
		sentinel = domain.ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = domain.ErrUnauthorized
	case http.StatusPreconditionFailed:
		sentinel = domain.ErrPreconditionFailed
	case http.StatusTooManyRequests:
		sentinel = domain.ErrThrottled
	default:
		return fmt.Errorf("%s %s: status %d: %s", verb, path, status, msg)
	}
	return fmt.Errorf("%s %s: %w: %s", verb, path, sentinel, msg)
}

func parseCharge(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseProgress(s string) int {
	if s == "" {
		return -1
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}

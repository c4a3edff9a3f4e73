// Package dataset provides the sample documents the tour loads: a remote
// JSON array fetched over HTTP, with a deterministic generator as the
// offline fallback.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

// Document is one sample record: a random name+number token and a random
// integer.
type Document struct {
	Field1 string `json:"field1"`
	Field2 int    `json:"field2"`
}

const fetchTimeout = 5 * time.Minute

// Fetch downloads the sample dataset: a JSON array of documents.
func Fetch(ctx context.Context, client *http.Client, url string) ([]Document, error) {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}

	var docs []Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("dataset at %s is empty", url)
	}
	return docs, nil
}

var tokenNames = []string{
	"Aiden", "Bristol", "Camden", "Dakota", "Emerson", "Finley", "Greer",
	"Harper", "Indigo", "Jordan", "Kendall", "Lennon", "Monroe", "Noble",
	"Oakley", "Parker", "Quincy", "Rowan", "Sutton", "Tatum", "Vernon",
	"Winslow", "Yardley", "Zephyr",
}

// Generate produces n deterministic sample documents for a seed. Field1 is a
// name+number token (e.g. "Harper 17"), Field2 a random integer.
func Generate(n int, seed uint64) []Document {
	rng := rand.New(rand.NewPCG(seed, seed))
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = Document{
			Field1: fmt.Sprintf("%s %d", tokenNames[rng.IntN(len(tokenNames))], rng.IntN(1000)),
			Field2: rng.IntN(1_000_000),
		}
	}
	return docs
}

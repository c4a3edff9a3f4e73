package rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DecodeKey decodes a base64 master key into raw HMAC key bytes.
func DecodeKey(key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode master key: %w", err)
	}
	return raw, nil
}

// Signature computes the master-key HMAC-SHA256 signature for a request.
// The signed payload is verb, resource type, resource link and the x-ms-date
// value, all lowercased, newline separated.
func Signature(key []byte, verb, resourceType, resourceLink, date string) string {
	payload := strings.ToLower(verb) + "\n" +
		strings.ToLower(resourceType) + "\n" +
		resourceLink + "\n" +
		strings.ToLower(date) + "\n" +
		"\n"

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthToken builds the url-encoded authorization header value
// (type=master&ver=1.0&sig=...).
func AuthToken(key []byte, verb, resourceType, resourceLink, date string) string {
	sig := Signature(key, verb, resourceType, resourceLink, date)
	return url.QueryEscape("type=master&ver=1.0&sig=" + sig)
}

// VerifyAuth checks an authorization header value against the expected
// signature for the request. Used by the emulator.
func VerifyAuth(key []byte, header, verb, resourceType, resourceLink, date string) bool {
	decoded, err := url.QueryUnescape(header)
	if err != nil {
		return false
	}
	sig, ok := strings.CutPrefix(decoded, "type=master&ver=1.0&sig=")
	if !ok {
		return false
	}
	want := Signature(key, verb, resourceType, resourceLink, date)
	return hmac.Equal([]byte(sig), []byte(want))
}

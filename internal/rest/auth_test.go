package rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"testing"
)

const testKey = "dGhpcyBpcyBhIHRlc3Qga2V5IGZvciBzaWduaW5n" // "this is a test key for signing"

func TestDecodeKey(t *testing.T) {
	raw, err := DecodeKey(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "this is a test key for signing" {
		t.Errorf("decoded key = %q", raw)
	}
}

func TestDecodeKey_Invalid(t *testing.T) {
	if _, err := DecodeKey("not base64 !!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestSignature_KnownVector(t *testing.T) {
	key := []byte("secret")
	date := "Mon, 01 Jan 2024 00:00:00 GMT"

	got := Signature(key, "GET", "dbs", "dbs/tour", date)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("get\ndbs\ndbs/tour\nmon, 01 jan 2024 00:00:00 gmt\n\n"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Errorf("signature = %q, want %q", got, want)
	}
}

func TestSignature_VerbCaseInsensitive(t *testing.T) {
	key := []byte("secret")
	date := "Mon, 01 Jan 2024 00:00:00 GMT"
	if Signature(key, "GET", "dbs", "dbs/tour", date) != Signature(key, "get", "dbs", "dbs/tour", date) {
		t.Error("signature must not depend on verb case")
	}
}

func TestAuthToken_URLEncoded(t *testing.T) {
	token := AuthToken([]byte("secret"), "POST", "colls", "dbs/tour", "date")
	decoded, err := url.QueryUnescape(token)
	if err != nil {
		t.Fatalf("token is not url-encoded: %v", err)
	}
	const prefix = "type=master&ver=1.0&sig="
	if len(decoded) <= len(prefix) || decoded[:len(prefix)] != prefix {
		t.Errorf("decoded token = %q, want %q prefix", decoded, prefix)
	}
}

func TestVerifyAuth(t *testing.T) {
	key := []byte("secret")
	date := "Mon, 01 Jan 2024 00:00:00 GMT"
	token := AuthToken(key, "DELETE", "docs", "dbs/tour/colls/c/docs/1", date)

	if !VerifyAuth(key, token, "DELETE", "docs", "dbs/tour/colls/c/docs/1", date) {
		t.Error("valid token rejected")
	}
	if VerifyAuth(key, token, "GET", "docs", "dbs/tour/colls/c/docs/1", date) {
		t.Error("token for wrong verb accepted")
	}
	if VerifyAuth([]byte("other"), token, "DELETE", "docs", "dbs/tour/colls/c/docs/1", date) {
		t.Error("token signed with wrong key accepted")
	}
	if VerifyAuth(key, "garbage", "DELETE", "docs", "dbs/tour/colls/c/docs/1", date) {
		t.Error("malformed token accepted")
	}
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestBearerToken_Table(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := BearerToken(tc.header)
		if got != tc.token || ok != tc.ok {
			t.Fatalf("BearerToken(%q) = (%q, %v); want (%q, %v)", tc.header, got, ok, tc.token, tc.ok)
		}
	}
}

func TestStaticVerifier(t *testing.T) {
	v, err := ParseStaticTokens("dev-token:user-1, other:user-2")
	if err != nil {
		t.Fatalf("ParseStaticTokens: %v", err)
	}
	who, err := v.Verify(context.Background(), "other")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if who.UID != "user-2" {
		t.Fatalf("UID = %q; want user-2", who.UID)
	}
	if _, err := v.Verify(context.Background(), "nope"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseStaticTokens_Invalid(t *testing.T) {
	for _, spec := range []string{"", "no-colon", ":uid", "token:"} {
		if _, err := ParseStaticTokens(spec); err == nil {
			t.Fatalf("ParseStaticTokens(%q): expected error", spec)
		}
	}
}

func newLookupServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != lookupPath {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "web-key" {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in["idToken"] != "id-token" {
			t.Errorf("idToken = %q", in["idToken"])
		}
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
}

func TestIdentityToolkitVerifier_Success(t *testing.T) {
	var hits int32
	ts := newLookupServer(t, http.StatusOK, `{"kind":"identitytoolkit#GetAccountInfoResponse","users":[{"localId":"uid-42","email":"a@b.c"}]}`, &hits)
	defer ts.Close()

	v := NewIdentityToolkitVerifier(ts.URL+"/", "web-key", nil)
	who, err := v.Verify(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if who.UID != "uid-42" || who.Email != "a@b.c" {
		t.Fatalf("unexpected identity: %+v", who)
	}
}

func TestIdentityToolkitVerifier_Rejected(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"invalid token", http.StatusBadRequest, `{"error":{"code":400,"message":"INVALID_ID_TOKEN"}}`},
		{"no users", http.StatusOK, `{"users":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var hits int32
			ts := newLookupServer(t, tc.status, tc.body, &hits)
			defer ts.Close()

			v := NewIdentityToolkitVerifier(ts.URL, "web-key", nil)
			if _, err := v.Verify(context.Background(), "id-token"); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestIdentityToolkitVerifier_SingleAttemptOnServerError(t *testing.T) {
	var hits int32
	ts := newLookupServer(t, http.StatusServiceUnavailable, `{}`, &hits)
	defer ts.Close()

	v := NewIdentityToolkitVerifier(ts.URL, "web-key", nil)
	if _, err := v.Verify(context.Background(), "id-token"); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", n)
	}
}

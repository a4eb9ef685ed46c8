package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestRequest_Key_Deterministic(t *testing.T) {
	// Same logical content, different construction order.
	first := &Request{
		Method:   http.MethodGet,
		Endpoint: "/kol/metrics",
		Params:   map[string]any{"wallet": "abc", "window": "7d"},
	}

	second := &Request{
		Method:   http.MethodGet,
		Endpoint: "/kol/metrics",
		Params:   map[string]any{"window": "7d", "wallet": "abc"},
	}

	if first.Key() != second.Key() {
		t.Errorf("Keys differ for identical content:\n%s\n%s", first.Key(), second.Key())
	}
}

func TestRequest_Key_DistinguishesContent(t *testing.T) {
	base := &Request{Method: http.MethodGet, Endpoint: "/kol/metrics", Params: map[string]any{"wallet": "abc"}}

	tests := []struct {
		name  string
		other *Request
	}{
		{
			name:  "different method",
			other: &Request{Method: http.MethodPost, Endpoint: "/kol/metrics", Params: map[string]any{"wallet": "abc"}},
		},
		{
			name:  "different endpoint",
			other: &Request{Method: http.MethodGet, Endpoint: "/whitelist/check", Params: map[string]any{"wallet": "abc"}},
		},
		{
			name:  "different params",
			other: &Request{Method: http.MethodGet, Endpoint: "/kol/metrics", Params: map[string]any{"wallet": "xyz"}},
		},
		{
			name:  "different body",
			other: &Request{Method: http.MethodGet, Endpoint: "/kol/metrics", Params: map[string]any{"wallet": "abc"}, Body: map[string]any{"x": 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.Key() == tt.other.Key() {
				t.Errorf("Key collision: %s", base.Key())
			}
		})
	}
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{
			name:   "primitive string",
			params: map[string]any{"wallet": "abc"},
			want:   "wallet=abc",
		},
		{
			name:   "primitive number",
			params: map[string]any{"page": 2},
			want:   "page=2",
		},
		{
			name:   "string array becomes repeated bracket pairs",
			params: map[string]any{"tags": []string{"defi", "nft"}},
			want:   "tags%5B%5D=defi&tags%5B%5D=nft",
		},
		{
			name:   "any array becomes repeated bracket pairs",
			params: map[string]any{"ids": []any{1, 2}},
			want:   "ids%5B%5D=1&ids%5B%5D=2",
		},
		{
			name:   "nested object is JSON-stringified",
			params: map[string]any{"filter": map[string]any{"min": 5}},
			want:   "filter=%7B%22min%22%3A5%7D",
		},
		{
			name:   "url-encodes values",
			params: map[string]any{"q": "a b&c"},
			want:   "q=a+b%26c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeQuery(tt.params); got != tt.want {
				t.Errorf("encodeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequest_Build_Headers(t *testing.T) {
	req := &Request{
		Method:   http.MethodGet,
		Endpoint: "/wallet/verification",
		Params:   map[string]any{"wallet": "abc"},
	}

	httpReq, err := req.build(context.Background(), "https://api.test.kolport.io/v1", "secret-key")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if got := httpReq.Header.Get("Authorization"); got != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want Bearer secret-key", got)
	}
	if got := httpReq.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := httpReq.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}
	if got := httpReq.Header.Get("X-Client-Version"); got != Version {
		t.Errorf("X-Client-Version = %q, want %q", got, Version)
	}
	if got := httpReq.Header.Get("X-Client-Platform"); got != platformTag {
		t.Errorf("X-Client-Platform = %q, want %q", got, platformTag)
	}

	if !strings.Contains(httpReq.URL.String(), "/wallet/verification?wallet=abc") {
		t.Errorf("URL = %q, missing endpoint and query", httpReq.URL.String())
	}
}

func TestRequest_Build_CustomHeadersOverride(t *testing.T) {
	req := &Request{
		Method:   http.MethodPost,
		Endpoint: "/whitelist/check",
		Body:     map[string]any{"wallet": "abc"},
		Headers:  map[string]string{"X-Request-ID": "r-1"},
	}

	httpReq, err := req.build(context.Background(), "https://api.test.kolport.io/v1", "k")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if got := httpReq.Header.Get("X-Request-ID"); got != "r-1" {
		t.Errorf("X-Request-ID = %q, want r-1", got)
	}
	if httpReq.Body == nil {
		t.Error("POST body not set")
	}
}

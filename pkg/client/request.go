package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
)

// Request describes one logical call to the backend. It is treated as
// immutable once constructed.
type Request struct {
	// Method is the HTTP method (GET for reads, POST for mutations).
	Method string

	// Endpoint is the backend path (e.g. "/wallet/verification").
	Endpoint string

	// Params are query parameters for GET requests.
	Params map[string]any

	// Body is the JSON request body for POST requests.
	Body any

	// Headers are additional headers, overriding the client defaults.
	Headers map[string]string
}

// Key derives the deterministic string identifying this logical
// request for caching and de-duplication. encoding/json marshals map
// keys in sorted order, so two requests with the same logical content
// produce byte-identical keys regardless of construction order.
func (r *Request) Key() string {
	params, _ := json.Marshal(r.Params)
	body, _ := json.Marshal(r.Body)
	return fmt.Sprintf("%s %s?%s:%s", r.Method, r.Endpoint, params, body)
}

// build constructs the outgoing HTTP request: base URL, serialized
// query parameters, JSON body, and client-identifying headers.
func (r *Request) build(ctx context.Context, baseURL, apiKey string) (*http.Request, error) {
	target := baseURL + r.Endpoint
	if r.Method == http.MethodGet && len(r.Params) > 0 {
		target += "?" + encodeQuery(r.Params)
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Version", Version)
	req.Header.Set("X-Client-Platform", platformTag)

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// encodeQuery serializes the parameter map: arrays become repeated
// "key[]=value" pairs, nested objects are JSON-stringified, primitives
// are encoded directly. Everything is URL-encoded by url.Values.
func encodeQuery(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	vals := url.Values{}
	for _, key := range keys {
		switch v := params[key].(type) {
		case []string:
			for _, item := range v {
				vals.Add(key+"[]", item)
			}
		case []any:
			for _, item := range v {
				vals.Add(key+"[]", fmt.Sprint(item))
			}
		case map[string]any:
			encoded, _ := json.Marshal(v)
			vals.Set(key, string(encoded))
		default:
			vals.Set(key, fmt.Sprint(v))
		}
	}

	return vals.Encode()
}

/*
Copyright 2026 the GoShop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
)

//go:generate mockgen -source=api_client.go -destination=mock/interfaces.go -package=mock

// Doer is the subset of *http.Client the APIClient depends on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the raw outcome of a call. Interpretation is left to the test.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// TraceID identifies the request in server logs.
	TraceID string
}

// JSON decodes the body into the given value.
func (r *Response) JSON(into any) error {
	if err := json.Unmarshal(r.Body, into); err != nil {
		return fmt.Errorf("unmarshaling response body (status %d, trace ID %s): %w", r.StatusCode, r.TraceID, err)
	}

	return nil
}

// Object decodes the body as a generic JSON object, handy for asserting
// on the presence of keys.
func (r *Response) Object() (map[string]any, error) {
	var out map[string]any
	if err := r.JSON(&out); err != nil {
		return nil, err
	}

	return out, nil
}

// ErrorMessage returns the "error" field of an error body, or the empty
// string if there isn't one.
func (r *Response) ErrorMessage() string {
	var e ErrorResponse
	if err := json.Unmarshal(r.Body, &e); err != nil {
		return ""
	}

	return e.Error
}

func (r *Response) String() string {
	return fmt.Sprintf("status=%d body=%s traceID=%s", r.StatusCode, string(r.Body), r.TraceID)
}

type APIClient struct {
	baseURL   string
	client    Doer
	authToken string
	config    *TestConfig
	endpoints *Endpoints
	// log receives request traces, it is the GinkgoWriter unless replaced.
	log io.Writer
}

// NewAPIClient loads the test configuration and returns a client for it,
// baseURL overrides the configured one when not empty.
func NewAPIClient(baseURL string) (*APIClient, error) {
	config, err := LoadTestConfig()
	if err != nil {
		return nil, err
	}

	if baseURL == "" {
		baseURL = config.BaseURL
	}

	return newAPIClientWithConfig(config, baseURL, newHTTPClient(config)), nil
}

func NewAPIClientWithConfig(config *TestConfig) *APIClient {
	return newAPIClientWithConfig(config, config.BaseURL, newHTTPClient(config))
}

// NewAPIClientWithDoer allows the transport to be replaced, mainly for
// testing the client itself.
func NewAPIClientWithDoer(config *TestConfig, doer Doer) *APIClient {
	return newAPIClientWithConfig(config, config.BaseURL, doer)
}

// common constructor logic.
func newAPIClientWithConfig(config *TestConfig, baseURL string, doer Doer) *APIClient {
	return &APIClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    doer,
		authToken: config.AuthToken,
		config:    config,
		endpoints: NewEndpoints(),
		log:       ginkgo.GinkgoWriter,
	}
}

// newHTTPClient uses the default transport, a zero timeout means none.
func newHTTPClient(config *TestConfig) *http.Client {
	return &http.Client{
		Timeout: config.RequestTimeout,
	}
}

func (c *APIClient) SetAuthToken(token string) {
	c.authToken = token
}

func (c *APIClient) AuthToken() string {
	return c.authToken
}

// WithAuthToken returns a copy of the client bound to a different token,
// the receiver is left untouched.
func (c *APIClient) WithAuthToken(token string) *APIClient {
	clone := *c
	clone.authToken = token

	return &clone
}

// Anonymous returns a copy of the client that sends no credentials.
func (c *APIClient) Anonymous() *APIClient {
	return c.WithAuthToken("")
}

// WithLogWriter returns a copy of the client that traces to w. Outside a
// Ginkgo run the GinkgoWriter streams to standard output, which a command
// printing a result there must avoid.
func (c *APIClient) WithLogWriter(w io.Writer) *APIClient {
	clone := *c
	clone.log = w

	return &clone
}

// Logf writes a line to the client's trace output.
func (c *APIClient) Logf(format string, args ...any) {
	fmt.Fprintf(c.log, format, args...)
}

func (c *APIClient) BaseURL() string {
	return c.baseURL
}

func (c *APIClient) Endpoints() *Endpoints {
	return c.endpoints
}

// Get issues a GET with optional query parameters and headers.
func (c *APIClient) Get(ctx context.Context, path string, query url.Values, headers http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, query, headers)
}

// Post issues a POST with an optional JSON body.
func (c *APIClient) Post(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil, headers)
}

// Put issues a PUT with an optional JSON body.
func (c *APIClient) Put(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil, headers)
}

func (c *APIClient) Delete(ctx context.Context, path string, headers http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, headers)
}

// logError logs a transport level error with trace context.
func (c *APIClient) logError(method, path string, duration time.Duration, traceParent string, err error, context string) {
	c.Logf("[%s %s] ERROR %s duration=%s traceparent=%s error=%v\n", method, path, context, duration, traceParent, err)
	c.Logf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request\n", extractTraceID(traceParent))
}

// randomHex returns n random bytes hex encoded.
func randomHex(n int) string {
	bytes := make([]byte, n)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value, a fresh trace
// per request so a failure can be found in the server logs.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", randomHex(16), randomHex(8))
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// encodeBody marshals the body, []byte is sent verbatim so tests can post
// malformed documents.
func encodeBody(body any) ([]byte, error) {
	if raw, ok := body.([]byte); ok {
		return raw, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	return data, nil
}

// Do performs a request and returns the raw response. Only transport,
// encoding and contract validation failures are errors, every status code
// is returned to the caller as is.
//
//nolint:cyclop // test code complexity is acceptable
func (c *APIClient) Do(ctx context.Context, method, path string, body any, query url.Values, headers http.Header) (*Response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyBytes []byte

	if body != nil {
		data, err := encodeBody(body)
		if err != nil {
			return nil, err
		}

		bodyBytes = data
	}

	var reader io.Reader
	if bodyBytes != nil {
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=ginkgo")
	req.Header.Set("Accept", "application/json")

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	// Explicit headers win, including an empty Authorization.
	for key, values := range headers {
		req.Header.Del(key)

		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logError(method, path, duration, traceParent, err, "http request failed")
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logError(method, path, duration, traceParent, err, "reading response body")
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		c.Logf("[%s %s] status=%d duration=%s traceparent=%s\n", method, path, resp.StatusCode, duration, traceParent)
	}

	if c.config.LogResponses && len(respBody) > 0 {
		c.Logf("[%s %s] response body: %s\n", method, path, string(respBody))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		TraceID:    extractTraceID(traceParent),
	}

	if c.config.ValidateResponses {
		if err := validateResponse(ctx, req, result); err != nil {
			c.logError(method, path, duration, traceParent, err, "response violates API contract")
			return result, fmt.Errorf("response violates API contract (trace ID: %s): %w", result.TraceID, err)
		}
	}

	return result, nil
}

// Register creates a user account.
func (c *APIClient) Register(ctx context.Context, request RegisterRequest) (*Response, error) {
	return c.Post(ctx, c.endpoints.Register(), request, nil)
}

// Login exchanges a credential for a token, body is any so tests can send
// incomplete documents.
func (c *APIClient) Login(ctx context.Context, request any) (*Response, error) {
	return c.Post(ctx, c.endpoints.Login(), request, nil)
}

func (c *APIClient) GetProfile(ctx context.Context) (*Response, error) {
	return c.Get(ctx, c.endpoints.Profile(), nil, nil)
}

func (c *APIClient) UpdateProfile(ctx context.Context, request any) (*Response, error) {
	return c.Put(ctx, c.endpoints.Profile(), request, nil)
}

func (c *APIClient) ListCategories(ctx context.Context) (*Response, error) {
	return c.Get(ctx, c.endpoints.ListCategories(), nil, nil)
}

func (c *APIClient) GetCategory(ctx context.Context, categoryID string) (*Response, error) {
	return c.Get(ctx, c.endpoints.GetCategory(categoryID), nil, nil)
}

func (c *APIClient) CreateCategory(ctx context.Context, request any) (*Response, error) {
	return c.Post(ctx, c.endpoints.CreateCategory(), request, nil)
}

func (c *APIClient) UpdateCategory(ctx context.Context, categoryID string, request any) (*Response, error) {
	return c.Put(ctx, c.endpoints.UpdateCategory(categoryID), request, nil)
}

func (c *APIClient) DeleteCategory(ctx context.Context, categoryID string) (*Response, error) {
	return c.Delete(ctx, c.endpoints.DeleteCategory(categoryID), nil)
}

// ListProducts lists the catalogue, query may be nil.
func (c *APIClient) ListProducts(ctx context.Context, query *ProductQuery) (*Response, error) {
	values, err := query.Values()
	if err != nil {
		return nil, err
	}

	return c.Get(ctx, c.endpoints.ListProducts(), values, nil)
}

func (c *APIClient) GetProduct(ctx context.Context, productID string) (*Response, error) {
	return c.Get(ctx, c.endpoints.GetProduct(productID), nil, nil)
}

func (c *APIClient) ListProductsByCategory(ctx context.Context, categoryID string, query *ProductQuery) (*Response, error) {
	values, err := query.Values()
	if err != nil {
		return nil, err
	}

	return c.Get(ctx, c.endpoints.ListProductsByCategory(categoryID), values, nil)
}

func (c *APIClient) CreateProduct(ctx context.Context, request any) (*Response, error) {
	return c.Post(ctx, c.endpoints.CreateProduct(), request, nil)
}

func (c *APIClient) UpdateProduct(ctx context.Context, productID string, request any) (*Response, error) {
	return c.Put(ctx, c.endpoints.UpdateProduct(productID), request, nil)
}

func (c *APIClient) DeleteProduct(ctx context.Context, productID string) (*Response, error) {
	return c.Delete(ctx, c.endpoints.DeleteProduct(productID), nil)
}

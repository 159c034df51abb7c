// Package api is the HTTP client for the RAG backend.
//
// Every request carries the license credential in the X-License-Key header.
// A 401 or 403 response clears the credential before the error is returned,
// on every path including multipart uploads. Failures are reported once and
// never retried; callers decide whether to try again.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/iksnae/ragchat/internal"
)

const (
	// LicenseHeader carries the license credential
	LicenseHeader = "X-License-Key"

	// MaxResponseSize caps how much of a response body is read
	MaxResponseSize = 10 * 1024 * 1024
)

// Credentials supplies the license key and is told when the backend rejects it
type Credentials interface {
	Key() (string, bool)
	Clear()
}

// Client talks to the RAG backend
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the backend at baseURL. No timeout is set
// on the default transport; use the request context to bound calls.
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{},
		userAgent:  "ragchat",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health calls GET /health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query submits a transcript to POST /api/rag/query
func (c *Client) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/rag/query", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDocuments calls GET /api/documents/all
func (c *Client) ListDocuments(ctx context.Context) (*DocumentList, error) {
	var out DocumentList
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents/all", nil, &out); err != nil {
		return nil, err
	}
	if out.Files == nil {
		out.Files = []DocumentFile{}
	}
	return &out, nil
}

// UploadDocument sends content as a multipart form to POST
// /api/documents/upload. sessionID is omitted from the form when empty.
func (c *Client) UploadDocument(ctx context.Context, fileName string, content io.Reader, sessionID string) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if sessionID != "" {
		if err := mw.WriteField("session_id", sessionID); err != nil {
			return nil, fmt.Errorf("failed to write session_id: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/documents/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSessionDocuments calls DELETE /api/documents/sessions/{sessionID}
func (c *Client) DeleteSessionDocuments(ctx context.Context, sessionID string) (*DeleteResponse, error) {
	var out DeleteResponse
	path := "/api/documents/sessions/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFileDocuments calls DELETE /api/documents/file/{fileName}
func (c *Client) DeleteFileDocuments(ctx context.Context, fileName string) (*DeleteResponse, error) {
	var out DeleteResponse
	path := "/api/documents/file/" + url.PathEscape(fileName)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.creds != nil {
		if key, ok := c.creds.Key(); ok {
			req.Header.Set(LicenseHeader, key)
		}
	}
	return req, nil
}

// do sends req and decodes a 2xx body into out. Every request path ends
// here, so the 401/403 handling applies to all of them.
func (c *Client) do(req *http.Request, out interface{}) error {
	internal.LogDebug("%s %s", req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return &NetworkError{Op: "read " + req.Method, URL: req.URL.String(), Err: err}
	}

	internal.LogDebug("%s %s -> %d (%d bytes)", req.Method, req.URL.Path, resp.StatusCode, len(data))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if c.creds != nil {
			c.creds.Clear()
		}
		return &UnauthorizedError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail := errorDetail(data)
		if detail == "" {
			detail = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &HTTPError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("invalid response body: %v", err)}
	}
	return nil
}

// errorDetail extracts the server-provided message from an error body.
// FastAPI style {"detail": "..."} is preferred; validation errors arrive as
// a list of objects carrying "msg".
func errorDetail(data []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds state between test steps.
//
// Every scenario speaks from its own source address through X-Forwarded-For,
// so the server under test must trust the runner as a proxy
// (TRUSTED_PROXIES=127.0.0.1,::1). ADMIN_TOKEN must match ADMIN_API_TOKEN.
type TestContext struct {
	BaseURL          string
	AdminToken       string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	ClientIP         string
	OperatorIP       string
	AccessToken      string
	RefreshToken     string
	Email            string
	Password         string
}

// NewTestContext creates a new test context with a fresh source address.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "e2e-admin-token"
	}

	return &TestContext{
		BaseURL:    baseURL,
		AdminToken: adminToken,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		// 198.18.0.0/15 is reserved for benchmarking and never routed.
		ClientIP:   fmt.Sprintf("198.18.%d.%d", rand.IntN(256), 1+rand.IntN(254)),
		OperatorIP: fmt.Sprintf("198.19.%d.%d", rand.IntN(256), 1+rand.IntN(254)),
	}
}

// Do sends a request from the scenario's source address and stores the response.
func (tc *TestContext) Do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Forwarded-For", tc.ClientIP)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// POST makes a POST request and stores the response.
func (tc *TestContext) POST(path string, body any) error {
	return tc.Do(http.MethodPost, path, body, nil)
}

// POSTWithHeaders makes a POST request with extra headers.
func (tc *TestContext) POSTWithHeaders(path string, body any, headers map[string]string) error {
	return tc.Do(http.MethodPost, path, body, headers)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.Do(http.MethodGet, path, nil, headers)
}

// DELETE makes a DELETE request and stores the response.
func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.Do(http.MethodDelete, path, nil, headers)
}

// GetResponseField extracts a top-level field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.LastResponse == nil {
		return ""
	}
	return tc.LastResponse.Header.Get(name)
}

func (tc *TestContext) GetLastResponseBody() []byte  { return tc.LastResponseBody }
func (tc *TestContext) GetClientIP() string          { return tc.ClientIP }
func (tc *TestContext) GetAdminToken() string        { return tc.AdminToken }
func (tc *TestContext) GetOperatorIP() string        { return tc.OperatorIP }
func (tc *TestContext) GetAccessToken() string       { return tc.AccessToken }
func (tc *TestContext) SetAccessToken(token string)  { tc.AccessToken = token }
func (tc *TestContext) GetRefreshToken() string      { return tc.RefreshToken }
func (tc *TestContext) SetRefreshToken(token string) { tc.RefreshToken = token }

func (tc *TestContext) GetCredentials() (email, password string) { return tc.Email, tc.Password }
func (tc *TestContext) SetCredentials(email, password string) {
	tc.Email = email
	tc.Password = password
}

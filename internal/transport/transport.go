// Package transport implements the GraphQL Transport Adapter (spec.md
// §4.6): a single execute(query, variables) operation over HTTPS, with
// TransportError/GraphQLError classification and a structured
// request/response log record, grounded on the original implementation's
// CatoGraphQLClient.execute and HTTPLogger.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"catoseq/internal/apperr"
	"catoseq/internal/model"
)

// LogRecord is one entry of the http_requests_<ts>.json sink (spec.md §6).
type LogRecord struct {
	RequestID       string      `json:"request_id"`
	Timestamp       string      `json:"timestamp"`
	DurationSeconds float64     `json:"duration_seconds"`
	Request         RequestInfo `json:"request"`
	Response        model.Value `json:"response"`
	Error           string      `json:"error,omitempty"`
}

// RequestInfo is the redacted outbound request shape captured in a LogRecord.
type RequestInfo struct {
	URL     string                 `json:"url"`
	Method  string                 `json:"method"`
	Headers map[string]string      `json:"headers"`
	Payload map[string]model.Value `json:"payload"`
}

// Client executes GraphQL operations against a single configured endpoint.
type Client struct {
	APIURL    string
	APIKey    string
	AccountID string
	HTTPClient *http.Client
	Logs       []LogRecord
}

// New builds a Client with the given endpoint, credentials, and timeout.
// Connection pooling, transport-level retry, and TLS configuration are
// explicit Non-goals (spec.md §1); the stdlib client's defaults are used
// as-is.
func New(apiURL, apiKey, accountID string, timeout time.Duration) *Client {
	return &Client{
		APIURL:    apiURL,
		APIKey:    apiKey,
		AccountID: accountID,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Execute sends {query, variables} as a JSON POST with the tenant API key
// header, decodes the response, and classifies the outcome. The returned
// response body is always non-nil on a nil error.
func (c *Client) Execute(query string, variables map[string]model.Value) (model.Value, error) {
	requestID := uuid.New().String()[:8]
	if variables == nil {
		variables = map[string]model.Value{}
	}
	payload := map[string]model.Value{"query": query, "variables": variables}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.TransportError, "failed to encode GraphQL request", err)
	}

	requestInfo := RequestInfo{
		URL:     c.APIURL,
		Method:  http.MethodPost,
		Headers: map[string]string{"x-api-key": redactKey(c.APIKey)},
		Payload: payload,
	}

	start := time.Now()
	responseBody, statusCode, httpErr := c.post(body)
	duration := time.Since(start).Seconds()

	record := LogRecord{
		RequestID:       requestID,
		Timestamp:       start.Format(time.RFC3339),
		DurationSeconds: round3(duration),
		Request:         requestInfo,
	}

	if httpErr != nil {
		record.Error = httpErr.Error()
		record.Response = map[string]model.Value{"status_code": nil, "headers": map[string]model.Value{}, "body": map[string]model.Value{}, "error": httpErr.Error()}
		c.Logs = append(c.Logs, record)
		return nil, apperr.Wrap(apperr.TransportError, "GraphQL request failed", httpErr)
	}

	decoded := decodeBody(responseBody)
	record.Response = map[string]model.Value{"status_code": float64(statusCode), "body": decoded}

	if statusCode >= 400 {
		record.Error = fmt.Sprintf("HTTP %d", statusCode)
		c.Logs = append(c.Logs, record)
		return decoded, apperr.New(apperr.TransportError, fmt.Sprintf("GraphQL endpoint returned HTTP %d", statusCode))
	}

	if errs, hasErrors := extractGraphQLErrors(decoded); hasErrors {
		record.Error = fmt.Sprintf("GraphQL errors: %v", errs)
		c.Logs = append(c.Logs, record)
		return decoded, apperr.New(apperr.GraphQLError, fmt.Sprintf("GraphQL errors: %v", errs))
	}

	c.Logs = append(c.Logs, record)
	return decoded, nil
}

// RecordedLogs returns every request/response log entry accumulated so
// far, for the Result/Log Sink to persist as http_requests_<ts>.json.
func (c *Client) RecordedLogs() []LogRecord {
	return c.Logs
}

func (c *Client) post(body []byte) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodPost, c.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// decodeBody decodes response bytes as JSON, falling back to
// {raw_text: <body>} on decode failure, per spec.md §4.6.
func decodeBody(raw []byte) model.Value {
	var decoded model.Value
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return map[string]model.Value{"raw_text": string(raw)}
	}
	return decoded
}

// extractGraphQLErrors reports whether the decoded body carries a
// top-level "errors" array, per spec.md §4.6.
func extractGraphQLErrors(decoded model.Value) ([]model.Value, bool) {
	obj, ok := decoded.(map[string]model.Value)
	if !ok {
		return nil, false
	}
	raw, present := obj["errors"]
	if !present {
		return nil, false
	}
	errs, ok := raw.([]model.Value)
	if !ok {
		return nil, false
	}
	return errs, true
}

// redactKey renders an API key as "***<last4>", matching the original
// implementation's header redaction.
func redactKey(key string) string {
	if len(key) <= 4 {
		return "***" + key
	}
	return "***" + key[len(key)-4:]
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}

package service

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// loggingTransport is an http.RoundTripper that logs every exchange with the command
// service and keeps a summary of the last one. Bodies are never captured because they
// carry passwords.
type loggingTransport struct {
	base http.RoundTripper
	log  *log.Logger

	mutex sync.RWMutex
	last  string
}

func newLoggingTransport(base http.RoundTripper, logger *log.Logger) *loggingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, log: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	requestData := map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.Redacted(),
		"headers": sanitizeHeaders(req.Header),
	}

	resp, err := t.base.RoundTrip(req)
	endTime := time.Now()
	elapsed := endTime.Sub(startTime)

	var responseData map[string]interface{}
	if err != nil {
		t.log.Debug("HTTP exchange failed", "url", req.URL.Redacted(), "elapsed", elapsed, "error", err)
		responseData = map[string]interface{}{"error": err.Error()}
	} else {
		t.log.Debug("HTTP exchange", "url", req.URL.Redacted(), "status", resp.StatusCode, "elapsed", elapsed)
		responseData = map[string]interface{}{
			"status_code": resp.StatusCode,
			"status":      resp.Status,
			"headers":     sanitizeHeaders(resp.Header),
		}
	}

	t.store(requestData, responseData, startTime, endTime)
	return resp, err
}

func (t *loggingTransport) store(requestData, responseData map[string]interface{}, startTime, endTime time.Time) {
	data := map[string]interface{}{
		"http_request":  requestData,
		"http_response": responseData,
		"timing": map[string]interface{}{
			"request_time":  startTime.Format(time.RFC3339),
			"response_time": endTime.Format(time.RFC3339),
			"duration_ms":   endTime.Sub(startTime).Milliseconds(),
		},
	}

	encoded, err := json.Marshal(data)
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err != nil {
		t.log.Error("Failed to marshal exchange summary", "error", err)
		t.last = `{"error": "failed to marshal exchange summary"}`
		return
	}
	t.last = string(encoded)
}

// Last returns the JSON summary of the most recent exchange, or "" before the first one.
func (t *loggingTransport) Last() string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.last
}

// sanitizeHeaders masks credentials and cookies, which carry the session.
func sanitizeHeaders(headers http.Header) map[string][]string {
	sanitized := make(map[string][]string, len(headers))
	for name, values := range headers {
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, "authorization") ||
			strings.Contains(lowerName, "cookie") ||
			strings.Contains(lowerName, "token") {
			sanitized[name] = []string{"***[MASKED]***"}
			continue
		}
		sanitized[name] = values
	}
	return sanitized
}

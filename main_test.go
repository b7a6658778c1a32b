package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gigscout/pkg/api"
)

func TestHandlerProblemDetails(t *testing.T) {
	srv := &server{}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		handler        http.HandlerFunc
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "Scrape without prior scan",
			method:         "POST",
			path:           "/scrape",
			body:           "",
			handler:        srv.handleScrape,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "No gigs to scrape",
		},
		{
			name:           "Set config - invalid JSON",
			method:         "PUT",
			path:           "/config",
			body:           "{not json",
			handler:        srv.handleSetConfig,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid JSON body",
		},
		{
			name:           "Set config - missing key",
			method:         "PUT",
			path:           "/config",
			body:           `{"url": "https://example.supabase.co"}`,
			handler:        srv.handleSetConfig,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Both url and key are required",
		},
		{
			name:           "Message - invalid JSON",
			method:         "POST",
			path:           "/message",
			body:           "{",
			handler:        srv.handleMessage,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))

			rr := httptest.NewRecorder()
			tt.handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tt.expectedStatus)
			}

			// Check Content-Type
			expectedContentType := "application/problem+json"
			if contentType := rr.Header().Get("Content-Type"); contentType != expectedContentType {
				t.Errorf("handler returned wrong content type: got %v want %v",
					contentType, expectedContentType)
			}

			// Check JSON Body
			var pd api.ProblemDetails
			if err := json.Unmarshal(rr.Body.Bytes(), &pd); err != nil {
				t.Errorf("handler returned invalid JSON: %v. Body: %s", err, rr.Body.String())
			}

			if pd.Status != tt.expectedStatus {
				t.Errorf("JSON status mismatch: got %v want %v", pd.Status, tt.expectedStatus)
			}
			if !strings.Contains(pd.Detail, tt.expectedDetail) {
				t.Errorf("JSON detail mismatch: got %q, want substring %q", pd.Detail, tt.expectedDetail)
			}
			if pd.Instance != tt.path {
				t.Errorf("JSON instance mismatch: got %v want %v", pd.Instance, tt.path)
			}
		})
	}
}

func TestMessageRejectedWhileTabBusy(t *testing.T) {
	srv := &server{}
	srv.msgMux = srv.messageMux()

	// Simulate a running batch holding the tab.
	srv.tabMu.Lock()
	defer srv.tabMu.Unlock()

	req := httptest.NewRequest("POST", "/message", strings.NewReader(`{"type": "CHECK_LOGIN"}`))
	rr := httptest.NewRecorder()
	srv.handleMessage(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	var pd api.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &pd); err != nil {
		t.Fatalf("invalid JSON body: %v. Body: %s", err, rr.Body.String())
	}
	if pd.Status != http.StatusConflict {
		t.Errorf("JSON status mismatch: got %v want %v", pd.Status, http.StatusConflict)
	}
	if !strings.Contains(pd.Detail, "already running") {
		t.Errorf("JSON detail mismatch: got %q", pd.Detail)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "********"},
		{"short", "********"},
		{"eyJhbGciOiJIUzI1NiJ9", "eyJh...NiJ9"},
	}

	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

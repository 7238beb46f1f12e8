package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestCORSMiddleware tests that only loopback origins get CORS headers
func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server, err := NewServer(testConfig())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	router := gin.New()
	router.Use(server.corsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectAllowed  bool
	}{
		{name: "localhost origin", method: "GET", origin: "http://localhost:3000", expectedStatus: 200, expectAllowed: true},
		{name: "loopback IP origin", method: "GET", origin: "http://127.0.0.1:8080", expectedStatus: 200, expectAllowed: true},
		{name: "IPv6 loopback origin", method: "GET", origin: "http://[::1]:8080", expectedStatus: 200, expectAllowed: true},
		{name: "preflight from loopback", method: "OPTIONS", origin: "http://localhost", expectedStatus: 204, expectAllowed: true},
		{name: "remote origin", method: "GET", origin: "https://www.roblox.com", expectedStatus: 200},
		{name: "preflight from remote", method: "OPTIONS", origin: "https://evil.example", expectedStatus: 204},
		{name: "lookalike host", method: "GET", origin: "http://localhost.example.com", expectedStatus: 200},
		{name: "no origin", method: "GET", expectedStatus: 200},
		{name: "file origin", method: "GET", origin: "null", expectedStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			allowed := w.Header().Get("Access-Control-Allow-Origin")
			if tt.expectAllowed {
				if allowed != tt.origin {
					t.Errorf("Allow-Origin = %q, want %q", allowed, tt.origin)
				}
				if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, OPTIONS" {
					t.Errorf("Allow-Methods = %q", got)
				}
			} else if allowed != "" {
				t.Errorf("Allow-Origin = %q, want none", allowed)
			}
			if w.Header().Get("Access-Control-Allow-Credentials") != "" {
				t.Error("Credentials must not be allowed")
			}
		})
	}
}

package middleware

import "testing"

// TestNormalizePath проверяет нормализацию путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/v1/info", "/api/v1/info"},
		{"/api/v1/download", "/api/v1/download"},
		{"/api/v1/files/6ba7b810-9dad-11d1-80b4-00c04fd430c8", "/api/v1/files/{id}"},
		{"/api/v1/files/anything-else", "/api/v1/files/{id}"},
		{"/", "/"},
		{"/app.js", "/app.js"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидался %q", tt.path, got, tt.want)
		}
	}
}

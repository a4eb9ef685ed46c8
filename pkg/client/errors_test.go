package client

import "testing"

func TestHTTPErrorCode(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{404, "HTTP_404"},
		{500, "HTTP_500"},
		{503, "HTTP_503"},
	}

	for _, tt := range tests {
		if got := httpErrorCode(tt.status); got != tt.want {
			t.Errorf("httpErrorCode(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class ErrorClass
		want  bool
	}{
		{ErrorClassServer, true},
		{ErrorClassNetwork, true},
		{ErrorClassClient, false},
		{ErrorClassCancelled, false},
		{ErrorClassParse, false},
		{ErrorClassInternal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.want {
				t.Errorf("shouldRetry(%s) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

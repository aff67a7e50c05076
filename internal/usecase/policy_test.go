package usecase

import "testing"

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excluded []string
		want     bool
	}{
		{
			name:     "empty path is always protected",
			path:     "",
			excluded: []string{"/"},
			want:     true,
		},
		{
			name:     "nil exclusions protect everything",
			path:     "/api/v1/status",
			excluded: nil,
			want:     true,
		},
		{
			name:     "empty exclusions protect everything",
			path:     "/api/v1/status",
			excluded: []string{},
			want:     true,
		},
		{
			name:     "exact match is open",
			path:     "/api/v1/status/",
			excluded: []string{"/api/v1/status/"},
			want:     false,
		},
		{
			name:     "path without trailing slash matches slashed pattern",
			path:     "/api/v1/status",
			excluded: []string{"/api/v1/status/"},
			want:     false,
		},
		{
			name:     "slashed path matches bare pattern",
			path:     "/api/v1/status/",
			excluded: []string{"/api/v1/status"},
			want:     false,
		},
		{
			name:     "unlisted path is protected",
			path:     "/api/v1/users",
			excluded: []string{"/api/v1/status/"},
			want:     true,
		},
		{
			name:     "wildcard matches prefix",
			path:     "/api/v1/stats",
			excluded: []string{"/api/v1/stat*"},
			want:     false,
		},
		{
			name:     "wildcard matches nested path",
			path:     "/api/v1/status/detail",
			excluded: []string{"/api/v1/stat*"},
			want:     false,
		},
		{
			name:     "wildcard does not match outside prefix",
			path:     "/api/v1/users",
			excluded: []string{"/api/v1/stat*"},
			want:     true,
		},
		{
			name:     "second entry can match",
			path:     "/healthz",
			excluded: []string{"/api/v1/status/", "/healthz/"},
			want:     false,
		},
		{
			name:     "empty pattern entries are ignored",
			path:     "/api/v1/users",
			excluded: []string{"", "/api/v1/status/"},
			want:     true,
		},
		{
			name:     "root exclusion opens the root only",
			path:     "/",
			excluded: []string{"/"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequireAuth(tt.path, tt.excluded); got != tt.want {
				t.Fatalf("RequireAuth(%q, %v) = %v, want %v", tt.path, tt.excluded, got, tt.want)
			}
		})
	}
}

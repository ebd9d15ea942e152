package utils

import "testing"

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain http URL",
			input: "http://sonarr:8989",
			want:  "http://sonarr:8989",
		},
		{
			name:  "trailing slash stripped",
			input: "https://radarr.local:7878/",
			want:  "https://radarr.local:7878",
		},
		{
			name:  "path preserved without trailing slash",
			input: "http://nas.local/sonarr/",
			want:  "http://nas.local/sonarr",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  http://plex:32400  ",
			want:  "http://plex:32400",
		},
		{
			name:    "missing scheme",
			input:   "sonarr:8989",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			input:   "ftp://sonarr:8989",
			wantErr: true,
		},
		{
			name:    "missing hostname",
			input:   "http://",
			wantErr: true,
		},
		{
			name:    "query string rejected",
			input:   "http://sonarr:8989?apikey=abc",
			wantErr: true,
		},
		{
			name:    "fragment rejected",
			input:   "http://sonarr:8989/#top",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeBaseURL(%q) = %q, expected error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeBaseURL(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

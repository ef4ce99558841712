package profile

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			profile: Profile{Mode: "demo", Driver: "memory", EmbeddingDimensions: 1536},
			wantErr: false,
		},
		{
			name:    "empty driver falls back to memory",
			profile: Profile{Mode: "dev", EmbeddingDimensions: 8},
			wantErr: false,
		},
		{
			name:    "unknown driver rejected",
			profile: Profile{Mode: "dev", Driver: "mysql", EmbeddingDimensions: 8},
			wantErr: true,
		},
		{
			name:    "postgres requires dsn",
			profile: Profile{Mode: "prod", Driver: "postgres", EmbeddingDimensions: 8},
			wantErr: true,
		},
		{
			name:    "postgres with dsn ok",
			profile: Profile{Mode: "prod", Driver: "postgres", DSN: "postgres://localhost/viralrag", EmbeddingDimensions: 8},
			wantErr: false,
		},
		{
			name:    "zero dimensions rejected",
			profile: Profile{Mode: "dev", Driver: "memory"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesMode(t *testing.T) {
	p := Profile{Mode: "staging", Driver: "memory", EmbeddingDimensions: 8}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.Mode != "demo" {
		t.Errorf("Mode = %q, want demo", p.Mode)
	}
	if !p.IsDev() {
		t.Error("IsDev() = false, want true for demo mode")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("VIRALRAG_DRIVER", "memory")
	t.Setenv("VIRALRAG_EMBEDDING_DIMENSIONS", "8")

	p, err := FromEnv("test")
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if p.Driver != "memory" {
		t.Errorf("Driver = %q, want memory", p.Driver)
	}
	if p.EmbeddingDimensions != 8 {
		t.Errorf("EmbeddingDimensions = %d, want 8", p.EmbeddingDimensions)
	}
	if p.Version != "test" {
		t.Errorf("Version = %q, want test", p.Version)
	}
}

package logger

import (
	"testing"
	"time"

	"github.com/raysim/pipekit/errors"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Fatalf("expected default level info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Fatalf("expected default format console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Fatal("expected timestamp enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.IsCode(err, errors.ErrCodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields(FieldNode, "radiance", FieldPhase, "post")
	if m[FieldNode] != "radiance" || m[FieldPhase] != "post" {
		t.Fatalf("unexpected fields: %v", m)
	}
}

func TestFields_OddArguments(t *testing.T) {
	m := Fields(FieldNode, "a", "dangling")
	if len(m) != 1 {
		t.Fatalf("expected dangling key ignored, got %v", m)
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("execute", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Fatalf("unexpected duration field: %v", m)
	}
}

func TestGet_ComponentTagged(t *testing.T) {
	l := Get("dag")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNew_InvalidLevelFallsBack(t *testing.T) {
	l := New(&Config{Level: "nonsense", Format: "json", Output: "stderr"}, "test")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

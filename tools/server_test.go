package tools

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func requestWith(args map[string]any) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

func TestIntArg(t *testing.T) {
	// JSON numbers decode as float64; the helper narrows to int.
	got, err := intArg(requestWith(map[string]any{"channel": float64(7)}), "channel")
	if err != nil {
		t.Fatalf("intArg failed: %v", err)
	}
	if got != 7 {
		t.Errorf("intArg = %d, want 7", got)
	}

	if _, err := intArg(requestWith(map[string]any{}), "channel"); err == nil || !strings.Contains(err.Error(), "present") {
		t.Errorf("missing argument: err = %v, want 'must be present'", err)
	}
	if _, err := intArg(requestWith(map[string]any{"channel": "7"}), "channel"); err == nil || !strings.Contains(err.Error(), "number") {
		t.Errorf("wrong type: err = %v, want 'must be a number'", err)
	}
}

func TestFloatArg(t *testing.T) {
	got, err := floatArg(requestWith(map[string]any{"level": 75.5}), "level")
	if err != nil {
		t.Fatalf("floatArg failed: %v", err)
	}
	if got != 75.5 {
		t.Errorf("floatArg = %v, want 75.5", got)
	}

	if _, err := floatArg(requestWith(map[string]any{}), "level"); err == nil || !strings.Contains(err.Error(), "present") {
		t.Errorf("missing argument: err = %v, want 'must be present'", err)
	}
	if _, err := floatArg(requestWith(map[string]any{"level": true}), "level"); err == nil || !strings.Contains(err.Error(), "number") {
		t.Errorf("wrong type: err = %v, want 'must be a number'", err)
	}
}

func TestStringArg(t *testing.T) {
	got, err := stringArg(requestWith(map[string]any{"cue": "10.5"}), "cue")
	if err != nil {
		t.Fatalf("stringArg failed: %v", err)
	}
	if got != "10.5" {
		t.Errorf("stringArg = %q, want %q", got, "10.5")
	}

	// A missing argument and a wrong-typed one are distinct failures.
	if _, err := stringArg(requestWith(map[string]any{}), "cue"); err == nil || !strings.Contains(err.Error(), "present") {
		t.Errorf("missing argument: err = %v, want 'must be present'", err)
	}
	if _, err := stringArg(requestWith(map[string]any{"cue": float64(10)}), "cue"); err == nil || !strings.Contains(err.Error(), "string") {
		t.Errorf("wrong type: err = %v, want 'must be a string'", err)
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	svc, _, _ := newTestService(t)

	s := NewServer(svc, "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

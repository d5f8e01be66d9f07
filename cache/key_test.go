package cache

import (
	"strings"
	"testing"
)

func TestKey_OrderIndependentForMaps(t *testing.T) {
	k1 := Key(KeyRequest{Address: "/eos/get/group/1", Payload: map[string]any{"a": 1, "b": 2}})
	k2 := Key(KeyRequest{Address: "/eos/get/group/1", Payload: map[string]any{"b": 2, "a": 1}})

	if k1 != k2 {
		t.Errorf("keys should be equal for same content:\n  k1=%s\n  k2=%s", k1, k2)
	}
}

func TestKey_NestedMapsSorted(t *testing.T) {
	k1 := Key(KeyRequest{
		Address: "/eos/get/chan/1",
		Payload: map[string]any{"outer": map[string]any{"y": 2, "x": 1}},
	})
	k2 := Key(KeyRequest{
		Address: "/eos/get/chan/1",
		Payload: map[string]any{"outer": map[string]any{"x": 1, "y": 2}},
	})

	if k1 != k2 {
		t.Errorf("nested keys should sort:\n  k1=%s\n  k2=%s", k1, k2)
	}
}

func TestKey_ArrayOrderPreserved(t *testing.T) {
	k1 := Key(KeyRequest{Address: "/a", Payload: map[string]any{"items": []any{1, 2, 3}}})
	k2 := Key(KeyRequest{Address: "/a", Payload: map[string]any{"items": []any{3, 2, 1}}})

	if k1 == k2 {
		t.Error("keys should differ for different array order")
	}
}

func TestKey_AbsentEqualsOmitted(t *testing.T) {
	omitted := Key(KeyRequest{Address: "/a", Payload: map[string]any{"a": 1}})
	explicit := Key(KeyRequest{Address: "/a", Payload: map[string]any{"a": 1, "b": Absent}})

	if omitted != explicit {
		t.Errorf("Absent field should canonicalize as omitted:\n  omitted=%s\n  explicit=%s", omitted, explicit)
	}
}

func TestKey_NullDiffersFromOmitted(t *testing.T) {
	omitted := Key(KeyRequest{Address: "/a", Payload: map[string]any{"a": 1}})
	null := Key(KeyRequest{Address: "/a", Payload: map[string]any{"a": 1, "b": nil}})

	if omitted == null {
		t.Error("explicit null should differ from an omitted field")
	}
}

func TestKey_AbsentStrippedRecursively(t *testing.T) {
	k1 := Key(KeyRequest{
		Address: "/a",
		Payload: map[string]any{"nested": map[string]any{"keep": 1, "drop": Absent}},
	})
	k2 := Key(KeyRequest{
		Address: "/a",
		Payload: map[string]any{"nested": map[string]any{"keep": 1}},
	})

	if k1 != k2 {
		t.Errorf("Absent should strip inside nested maps:\n  k1=%s\n  k2=%s", k1, k2)
	}
}

func TestKey_DefaultMarkers(t *testing.T) {
	key := Key(KeyRequest{Address: "/eos/get/macro/5"})

	want := "/eos/get/macro/5|default|default|{}|null"
	if key != want {
		t.Errorf("Key() = %q, want %q", key, want)
	}
}

func TestKey_AllSegmentsPresent(t *testing.T) {
	key := Key(KeyRequest{
		Address:     "/eos/get/cue/1/10",
		Payload:     map[string]any{"part": 0},
		Destination: "192.168.1.10",
		Port:        8000,
		Extra:       map[string]any{"detail": true},
	})

	want := `/eos/get/cue/1/10|192.168.1.10|8000|{"part":0}|{"detail":true}`
	if key != want {
		t.Errorf("Key() = %q, want %q", key, want)
	}
}

func TestKey_DifferentInputsDiffer(t *testing.T) {
	base := KeyRequest{Address: "/a", Payload: map[string]any{"n": 1}}
	variants := []KeyRequest{
		{Address: "/b", Payload: map[string]any{"n": 1}},
		{Address: "/a", Payload: map[string]any{"n": 2}},
		{Address: "/a", Payload: map[string]any{"n": 1}, Destination: "host"},
		{Address: "/a", Payload: map[string]any{"n": 1}, Port: 9000},
		{Address: "/a", Payload: map[string]any{"n": 1}, Extra: "x"},
	}

	baseKey := Key(base)
	for i, v := range variants {
		if Key(v) == baseKey {
			t.Errorf("variant %d should produce a distinct key", i)
		}
	}
}

func TestKey_ScalarsUseLiteralEncoding(t *testing.T) {
	key := Key(KeyRequest{
		Address: "/a",
		Payload: map[string]any{"s": "text", "f": 1.5, "b": true, "z": nil},
	})

	for _, want := range []string{`"s":"text"`, `"f":1.5`, `"b":true`, `"z":null`} {
		if !strings.Contains(key, want) {
			t.Errorf("key %q should contain %q", key, want)
		}
	}
}

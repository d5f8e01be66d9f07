package osc

import "testing"

func TestMessage_IsBroadcast(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"/eos/out/group/1", true},
		{"/eos/out/get/chan/5", true},
		{"/eos/get/chan/5", false},
		{"/other/namespace", false},
		{"", false},
	}

	for _, tt := range tests {
		got := Message{Address: tt.address}.IsBroadcast()
		if got != tt.want {
			t.Errorf("IsBroadcast(%q) = %v, want %v", tt.address, got, tt.want)
		}
	}
}

func TestArgument_TypeTags(t *testing.T) {
	tests := []struct {
		value    any
		wantType string
	}{
		{int32(5), "i"},
		{float32(1.5), "f"},
		{"label", "s"},
		{[]byte{0x01}, "b"},
		{true, "T"},
		{false, "F"},
		{nil, "N"},
	}

	for _, tt := range tests {
		got := argument(tt.value)
		if got.Type != tt.wantType {
			t.Errorf("argument(%v).Type = %q, want %q", tt.value, got.Type, tt.wantType)
		}
	}
}

func TestMessage_String(t *testing.T) {
	msg := Message{
		Address: "/eos/out/get/group/5",
		Args: []Argument{
			{Type: "i", Value: int32(5)},
			{Type: "s", Value: "Front Wash"},
		},
	}
	want := "/eos/out/get/group/5 5 Front Wash"
	if got := msg.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

package osc

import (
	"fmt"
	"strings"
)

// BroadcastNamespace is the address prefix the console uses for all
// unsolicited state-change messages and command replies.
const BroadcastNamespace = "/eos/out/"

// Argument is one typed OSC argument.
type Argument struct {
	// Type is the OSC type tag: "i", "f", "s", "b", "T", "F" or "N".
	Type string

	// Value holds the decoded argument. Its Go type follows Type:
	// int32, float32, string, []byte, bool or nil.
	Value any
}

// Message is the inbound protocol message shape. Only Address is inspected
// by the cache; Args are carried through for tool handlers.
type Message struct {
	Address string
	Args    []Argument
}

// IsBroadcast reports whether the message lives under the console's
// broadcast namespace.
func (m Message) IsBroadcast() bool {
	return strings.HasPrefix(m.Address, BroadcastNamespace)
}

// String renders the message for logs.
func (m Message) String() string {
	if len(m.Args) == 0 {
		return m.Address
	}
	parts := make([]string, len(m.Args))
	for i, a := range m.Args {
		parts[i] = fmt.Sprintf("%v", a.Value)
	}
	return m.Address + " " + strings.Join(parts, " ")
}

// argument converts a decoded go-osc value into an Argument record.
func argument(v any) Argument {
	switch t := v.(type) {
	case int32:
		return Argument{Type: "i", Value: t}
	case float32:
		return Argument{Type: "f", Value: t}
	case string:
		return Argument{Type: "s", Value: t}
	case []byte:
		return Argument{Type: "b", Value: t}
	case bool:
		if t {
			return Argument{Type: "T", Value: true}
		}
		return Argument{Type: "F", Value: false}
	case nil:
		return Argument{Type: "N", Value: nil}
	default:
		return Argument{Type: "s", Value: fmt.Sprintf("%v", t)}
	}
}

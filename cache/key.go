package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Absent marks a field that should canonicalize as if it had been omitted.
// A nil value stays a JSON null and produces a different key; Absent lets
// callers forward optional fields without branching on their presence.
var Absent = absentValue{}

type absentValue struct{}

// keySeparator joins the canonical key segments.
const keySeparator = "|"

// defaultMarker stands in for an unset destination or port segment.
const defaultMarker = "default"

// KeyRequest describes one logical console request.
type KeyRequest struct {
	// Address is the OSC address the request targets.
	Address string

	// Payload is the structured request payload. A nil payload
	// canonicalizes as an empty object.
	Payload map[string]any

	// Destination is an optional secondary address. Empty means unset.
	Destination string

	// Port is an optional secondary port. Zero means unset and
	// canonicalizes to the default marker; an explicit port 0 is not
	// representable.
	Port int

	// Extra is optional additional data. Nil means unset.
	Extra any
}

// Key derives the deterministic lookup key for a request. Two logically
// identical requests produce the same key regardless of map insertion
// order; fields set to Absent are stripped recursively before serializing.
//
// Format: address|destination|port|payload|extra, with "default" standing
// in for an unset destination or port and "null" for unset extra data.
func Key(req KeyRequest) string {
	destination := req.Destination
	if destination == "" {
		destination = defaultMarker
	}
	port := defaultMarker
	if req.Port != 0 {
		port = strconv.Itoa(req.Port)
	}

	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	return req.Address + keySeparator +
		destination + keySeparator +
		port + keySeparator +
		canonicalize(payload) + keySeparator +
		canonicalize(req.Extra)
}

// canonicalize produces a deterministic JSON representation: object keys
// sorted lexicographically, array order preserved, Absent fields stripped.
func canonicalize(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case absentValue:
		// Bare Absent outside an object has no field to strip from;
		// it degrades to null, matching an absent array slot.
		return "null"
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			// Unserializable values still need a stable spelling.
			return strconv.Quote(fmt.Sprintf("%v", v))
		}
		return string(data)
	}
}

func canonicalizeMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if _, absent := v.(absentValue); absent {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		result = append(result, strconv.Quote(k)...)
		result = append(result, ':')
		result = append(result, canonicalize(m[k])...)
	}
	result = append(result, '}')
	return string(result)
}

func canonicalizeSlice(s []any) string {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		result = append(result, canonicalize(v)...)
	}
	result = append(result, ']')
	return string(result)
}

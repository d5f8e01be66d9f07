package cache

import "strings"

// Tag namespaces. Tags are compared by plain string equality, so the
// constructors below are the only legal way to build them; hand-built
// strings that drift by one character silently never match.
const (
	addressTagNS  = "osc:"
	prefixTagNS   = "osc-prefix:"
	resourceTagNS = "resource:"
)

// AddressTag returns the exact-match tag for one OSC address.
func AddressTag(address string) string {
	return addressTagNS + address
}

// PrefixTag returns the tag matching every address that starts with prefix.
func PrefixTag(prefix string) string {
	return prefixTagNS + prefix
}

// ResourceTag returns the tag covering every cached view of a resource type.
func ResourceTag(rt ResourceType) string {
	return resourceTagNS + string(rt)
}

// ResourceInstanceTag returns the tag covering one identified resource,
// e.g. resource:group:5.
func ResourceInstanceTag(rt ResourceType, id string) string {
	return resourceTagNS + string(rt) + ":" + id
}

// PrefixValue recovers the raw address prefix from a prefix tag. It reports
// false for strings outside the osc-prefix namespace.
func PrefixValue(tag string) (string, bool) {
	if !strings.HasPrefix(tag, prefixTagNS) {
		return "", false
	}
	return strings.TrimPrefix(tag, prefixTagNS), true
}

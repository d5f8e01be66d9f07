package cache

import (
	"errors"
	"strings"
)

// Sentinel errors for cache operations.
var (
	ErrInvalidResourceType = errors.New("cache: unknown resource type")
	ErrInvalidKey          = errors.New("cache: key is invalid")
)

// ResourceType is the closed category a cached value belongs to. It is the
// first component of an entry's identity and the unit of bulk invalidation.
type ResourceType string

const (
	ResourceChannel  ResourceType = "channel"
	ResourceGroup    ResourceType = "group"
	ResourcePalette  ResourceType = "palette"
	ResourcePreset   ResourceType = "preset"
	ResourceMacro    ResourceType = "macro"
	ResourceSnapshot ResourceType = "snapshot"
	ResourceCurve    ResourceType = "curve"
	ResourceEffect   ResourceType = "effect"
	ResourcePixmap   ResourceType = "pixmap"
	ResourceSub      ResourceType = "sub"
	ResourceCue      ResourceType = "cue"
	ResourceCueList  ResourceType = "cuelist"
	ResourceFader    ResourceType = "fader"
	ResourceWheel    ResourceType = "wheel"
	ResourcePatch    ResourceType = "patch"
	ResourceSetup    ResourceType = "setup"
	ResourceQuery    ResourceType = "query"
	ResourceSession  ResourceType = "session"
)

var resourceTypes = map[ResourceType]struct{}{
	ResourceChannel:  {},
	ResourceGroup:    {},
	ResourcePalette:  {},
	ResourcePreset:   {},
	ResourceMacro:    {},
	ResourceSnapshot: {},
	ResourceCurve:    {},
	ResourceEffect:   {},
	ResourcePixmap:   {},
	ResourceSub:      {},
	ResourceCue:      {},
	ResourceCueList:  {},
	ResourceFader:    {},
	ResourceWheel:    {},
	ResourcePatch:    {},
	ResourceSetup:    {},
	ResourceQuery:    {},
	ResourceSession:  {},
}

// Valid reports whether rt is a member of the closed enumeration.
func (rt ResourceType) Valid() bool {
	_, ok := resourceTypes[rt]
	return ok
}

func (rt ResourceType) String() string {
	return string(rt)
}

// idSeparator joins the two halves of an entry identifier. Resource type
// names contain no colon, so splitting at the first occurrence is
// unambiguous even when the key itself contains "::".
const idSeparator = "::"

// entryID composes the identifier naming one entry across all stores.
func entryID(rt ResourceType, key string) string {
	return string(rt) + idSeparator + key
}

// splitEntryID decomposes an identifier back into its resource type and key.
func splitEntryID(id string) (ResourceType, string, bool) {
	i := strings.Index(id, idSeparator)
	if i < 0 {
		return "", "", false
	}
	return ResourceType(id[:i]), id[i+len(idSeparator):], true
}

// validateKey rejects empty and whitespace-only keys.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Package tools exposes the console over MCP.
//
// Read tools fetch through the resource cache with invalidation tags
// registered at population time; command tools send console commands and
// proactively notify the cache that the resource changed. Admin tools
// surface cache stats, full clear and connection health.
package tools

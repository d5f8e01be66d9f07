// Package health reports the state of the console connection and the cache.
//
// A Checker is any component that can report its status. The tools package
// aggregates the registered checkers and surfaces them through the
// console_health MCP tool; there is no HTTP probe surface, the host serves
// MCP over stdio.
package health

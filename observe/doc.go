// Package observe bootstraps telemetry for the MCP host.
//
// It wires OpenTelemetry tracer and meter providers behind a small Config
// and builds the process logger. Everything writes to stderr: stdout is the
// MCP transport and must carry nothing but protocol frames.
package observe

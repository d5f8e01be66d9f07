// Package resilience wraps the console transport's failure handling.
//
// UDP sends to the console can drop or stall; the OSC client composes Retry
// (exponential backoff with jitter) and Timeout around every outbound
// message. The patterns are independent and take plain
// func(context.Context) error operations.
package resilience

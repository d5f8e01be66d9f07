// Package osc is the boundary to the Eos console's OSC protocol.
//
// It defines the inbound message shape consumed by the rest of the process,
// the console's broadcast namespace, address builders for the Eos "get"
// command family, and a UDP client with request/reply correlation. Wire
// encoding and decoding are delegated to github.com/hypebeast/go-osc.
package osc

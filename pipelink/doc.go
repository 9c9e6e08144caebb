// Package pipelink provides secure inter-process communication over a
// named duplex channel on a single host (a Windows named pipe or a Unix
// domain socket).
//
// Messages travel as length-prefixed frames, optionally protected with
// ChaCha20-Poly1305 authenticated encryption and optionally gated by a
// same-executable peer check that rejects processes launched from a
// different binary. One Server accepts many concurrent clients, each
// served by its own handler goroutine on its own Connection.
package pipelink

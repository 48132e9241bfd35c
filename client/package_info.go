// Package client sends test requests to the application over plain TCP connections, using the
// httpwire package to write and read the messages, and records the exact bytes exchanged.
package client

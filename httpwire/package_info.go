// Package httpwire reads and writes HTTP/1.1 messages byte by byte.
//
// It is not a general purpose HTTP implementation. It writes requests exactly as they were
// defined, with no added headers other than Host and Content-Length, and it reads responses in a
// way that keeps every received byte available for display: the header block and the body block
// are returned separately from the parsed Response. Only the identity and chunked transfer
// codings are supported; there is no support for compression, trailers, or persistent
// connections.
package httpwire

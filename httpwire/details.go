package httpwire

import (
	"encoding/hex"
	"strings"
)

// WireDetails holds the bytes of one HTTP message exactly as they were sent or received, split
// into the header block (start line, header lines and the empty line) and the body block. It is
// used for display only.
type WireDetails struct {
	HeaderBlock []byte
	BodyBlock   []byte
}

// SplitDetails splits the bytes of a request or response at the end of the header block. If
// there is no empty line, everything is treated as header block.
func SplitDetails(data []byte) WireDetails {
	s := string(data)
	if i := strings.Index(s, "\r\n\r\n"); i >= 0 {
		return WireDetails{HeaderBlock: data[:i+4], BodyBlock: data[i+4:]}
	}
	return WireDetails{HeaderBlock: data}
}

// Empty returns true if nothing at all was captured.
func (d WireDetails) Empty() bool {
	return len(d.HeaderBlock) == 0 && len(d.BodyBlock) == 0
}

// Bytes returns the header block followed by the body block.
func (d WireDetails) Bytes() []byte {
	ret := make([]byte, 0, len(d.HeaderBlock)+len(d.BodyBlock))
	ret = append(ret, d.HeaderBlock...)
	return append(ret, d.BodyBlock...)
}

// HeaderText returns the header block as text.
func (d WireDetails) HeaderText() string {
	return string(d.HeaderBlock)
}

// BodyText returns the body block as text. Invalid UTF-8 sequences are replaced.
func (d WireDetails) BodyText() string {
	return strings.ToValidUTF8(string(d.BodyBlock), "�")
}

// Hexdump renders all captured bytes in the format of "hexdump -C".
func (d WireDetails) Hexdump() string {
	return hex.Dump(d.Bytes())
}

package framework

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

const (
	minRunIDLength = 20
	maxRunIDLength = 200
)

var runIDDisallowedChars = regexp.MustCompile(`[^A-Za-z0-9-]`)

// RunIDGenerator creates run ids from test names. A run id consists of the test name stripped of
// everything but ASCII letters, digits and "-", followed by "-" and a counter that increases with
// every id the generator creates. It is padded with "-" to at least 20 characters, and the name
// part is shortened so that the result has at most 200.
//
// The zero value is ready to use, with the counter starting at 1. A process should share one
// generator between all runners, so that ids stay unique across sequences.
type RunIDGenerator struct {
	counter int64
}

// Next returns a new run id for the test name. It is safe for concurrent use.
func (g *RunIDGenerator) Next(testName string) string {
	suffix := "-" + strconv.FormatInt(atomic.AddInt64(&g.counter, 1), 10)
	name := runIDDisallowedChars.ReplaceAllString(testName, "")
	if len(name)+len(suffix) > maxRunIDLength {
		name = name[:maxRunIDLength-len(suffix)]
	}
	id := name + suffix
	if len(id) < minRunIDLength {
		id += strings.Repeat("-", minRunIDLength-len(id))
	}
	return id
}

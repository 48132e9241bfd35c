package report

import (
	"strings"

	"github.com/launchdarkly/http-selftest/httpwire"

	"github.com/alessio/shellescape"
)

// CurlCommand returns a shell command line that sends the same request with curl, for reproducing
// a failure by hand. The Host and Content-Length headers are left to curl.
func CurlCommand(baseURL string, req httpwire.Request) string {
	var cmd commandBuilder
	cmd.add("curl", "-i", "-X", req.Method)
	for _, h := range req.Headers.Pairs() {
		cmd.add("-H", h.Name+": "+h.Value)
	}
	if req.Body.IsDefined() {
		cmd.add("--data-binary", req.Body.StringValue())
	}
	cmd.add(strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(req.Path, "/"))
	return cmd.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

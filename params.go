package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/http-selftest/client"
	"github.com/launchdarkly/http-selftest/framework"
)

type commandParams struct {
	baseURL    string
	configFile string
	filters    framework.RegexFilters
	timeout    time.Duration
	wait       time.Duration
	jsonOutput bool
	hexdump    bool
	debug      bool
	debugAll   bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.baseURL, "url", "", "base URL of the service under test, with explicit port (overrides baseUrl in the suite file)")
	fs.StringVar(&c.configFile, "config", "", "YAML suite file")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.DurationVar(&c.timeout, "timeout", 0, "timeout for each HTTP call (default from suite file, or 3s)")
	fs.DurationVar(&c.wait, "wait", defaultWait, "how long to wait for the service to become reachable; 0 to not check")
	fs.BoolVar(&c.jsonOutput, "json", false, "write the report as JSON lines")
	fs.BoolVar(&c.hexdump, "hexdump", false, "include hex dumps of the raw bytes in debug output")
	fs.BoolVar(&c.debug, "debug", false, "enable debug output for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug output for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.configFile == "" {
		fmt.Fprintln(os.Stderr, "-config is required")
		fs.Usage()
		return false
	}
	if c.timeout < 0 {
		fmt.Fprintln(os.Stderr, "-timeout must not be negative")
		return false
	}
	return true
}

func (c *commandParams) callTimeout(fromFile time.Duration, fileHasTimeout bool) time.Duration {
	switch {
	case c.timeout > 0:
		return c.timeout
	case fileHasTimeout:
		return fromFile
	default:
		return client.DefaultTimeout
	}
}

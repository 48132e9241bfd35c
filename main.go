package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/launchdarkly/http-selftest/client"
	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/logging"
	"github.com/launchdarkly/http-selftest/report"
	"github.com/launchdarkly/http-selftest/suite"
)

const (
	defaultWait     = time.Second * 10
	reportQueueSize = 100
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	suiteFile, err := suite.LoadFile(params.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Suite file error: %s\n", err)
		os.Exit(1)
	}
	baseURL := params.baseURL
	if baseURL == "" {
		baseURL = suiteFile.BaseURL
	}
	if baseURL == "" {
		fmt.Fprintln(os.Stderr, "no base URL: use -url or set baseUrl in the suite file")
		os.Exit(1)
	}

	mainDebugLogger := logging.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stderr, "", log.LstdFlags)
	}
	transport := &client.Transport{Logger: mainDebugLogger}

	// progress goes to stderr so that stdout only contains the report
	if params.wait > 0 {
		if _, err := transport.AwaitReachable(baseURL, params.wait, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Service error: %s\n", err)
			os.Exit(1)
		}
	}

	if desc := params.filters.Describe(); desc != "" {
		fmt.Fprintln(os.Stderr, "Some tests will be skipped based on the filter criteria for this test run:")
		writeIndentedLines(desc)
		fmt.Fprintln(os.Stderr)
	}

	var sink framework.ReportSink
	if params.jsonOutput {
		sink = &report.JSONSink{IncludeWire: params.debugAll}
	} else {
		sink = &report.ConsoleSink{
			BaseURL:              baseURL,
			DebugOutputOnFailure: params.debug || params.debugAll,
			DebugOutputOnSuccess: params.debugAll,
			Hexdump:              params.hexdump,
		}
	}
	sink = report.NewAsyncSink(sink, reportQueueSize)

	fileTimeout, fileHasTimeout := suiteFile.Timeout()
	runner := framework.NewRunner(transport, framework.Options{
		Timeout: params.callTimeout(fileTimeout, fileHasTimeout),
		Logger:  mainDebugLogger,
		Filter:  params.filters.AsFilter,
	})

	results, err := runner.RunAll(suiteFile.TestCases(), suiteFile.Values(), baseURL, sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !results.OK() {
		os.Exit(1)
	}
}

func writeIndentedLines(text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(os.Stderr, "  %s\n", line)
	}
}

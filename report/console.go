package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/httpwire"
	"github.com/launchdarkly/http-selftest/logging"

	"github.com/fatih/color"
)

// ConsoleSink writes a human-readable report. By default only the outcome of each test case is
// shown; the Debug options add the request, response and captured log output.
type ConsoleSink struct {
	// Out defaults to os.Stdout.
	Out                  io.Writer
	BaseURL              string
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	// Hexdump adds a hex dump of the bytes sent and received to the debug output.
	Hexdump bool
	// NoColor turns off colors even on a terminal.
	NoColor bool

	palette *palette
}

type palette struct {
	pass, fail, err, warn, dim *color.Color
}

func newPalette(disabled bool) *palette {
	p := &palette{
		pass: color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
	}
	if disabled {
		for _, c := range []*color.Color{p.pass, p.fail, p.err, p.warn, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (c *ConsoleSink) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleSink) colors() *palette {
	if c.palette == nil {
		c.palette = newPalette(c.NoColor)
	}
	return c.palette
}

func (c *ConsoleSink) TestStarted(name, runID string) {
	fmt.Fprintf(c.out(), "[%s] %s\n", name, c.colors().dim.Sprint(runID))
}

func (c *ConsoleSink) TestSkipped(name, reason string) {
	if reason == "" {
		fmt.Fprintf(c.out(), "  SKIPPED: %s\n", name)
	} else {
		fmt.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", name, reason)
	}
}

func (c *ConsoleSink) TestFinished(record framework.RunRecord) {
	w, p := c.out(), c.colors()
	failed := record.Result.Kind != framework.Success

	switch record.Result.Kind {
	case framework.Success:
		fmt.Fprintf(w, "  %s (%d ms)\n", p.pass.Sprint("PASSED"), record.ElapsedMillis())
	case framework.Failure:
		fmt.Fprintf(w, "  %s: %s\n", p.fail.Sprint("FAILED"), record.Result.Message)
	default:
		fmt.Fprintf(w, "  %s:\n", p.err.Sprint("ERROR"))
		writeIndented(w, "    ", record.Result.Cause.Error())
	}
	if record.Slow() {
		fmt.Fprintf(w, "  %s: took %d ms, more than the acceptable %d ms\n",
			p.warn.Sprint("SLOW"), record.ElapsedMillis(), record.MaxDuration.Milliseconds())
	}
	flags := logging.InspectLogs(record.Logs, record.RunID)
	if flags.Errors {
		fmt.Fprintf(w, "  %s: the application logged errors\n", p.warn.Sprint("LOGS"))
	}
	if flags.Warnings {
		fmt.Fprintf(w, "  %s: the application logged warnings\n", p.warn.Sprint("LOGS"))
	}
	if flags.Foreign {
		fmt.Fprintf(w, "  %s: some log output belongs to other requests\n", p.warn.Sprint("LOGS"))
	}
	for _, clue := range record.Clues {
		fmt.Fprintf(w, "  clue: %s\n", clue)
	}

	if (failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess) {
		c.writeDebugOutput(w, record)
	}
}

func (c *ConsoleSink) writeDebugOutput(w io.Writer, record framework.RunRecord) {
	if record.Request != nil && c.BaseURL != "" {
		fmt.Fprintf(w, "    DEBUG reproduce with: %s\n", CurlCommand(c.BaseURL, *record.Request))
	}
	c.writeWire(w, "sent", record.Sent)
	c.writeWire(w, "received", record.Received)
	record.DebugOutput.Dump(w, "    DEBUG ")
	for _, d := range record.Logs {
		writeLogs(w, d, record.RunID)
	}
}

func (c *ConsoleSink) writeWire(w io.Writer, label string, details httpwire.WireDetails) {
	if details.Empty() {
		fmt.Fprintf(w, "    DEBUG %s: nothing\n", label)
		return
	}
	fmt.Fprintf(w, "    DEBUG %s:\n", label)
	writeIndented(w, "      ", strings.TrimRight(details.HeaderText()+details.BodyText(), "\r\n"))
	if c.Hexdump {
		writeIndented(w, "      ", strings.TrimRight(details.Hexdump(), "\n"))
	}
}

func writeLogs(w io.Writer, d logging.Details, runID string) {
	names := strings.Join(d.Names, ", ")
	if d.Logs.Len() == 0 {
		fmt.Fprintf(w, "    DEBUG logs (%s): none\n", names)
		return
	}
	fmt.Fprintf(w, "    DEBUG logs (%s):\n", names)
	if d.Logs.Overflowed() {
		fmt.Fprintf(w, "      ... earlier events were dropped\n")
	}
	for _, e := range d.Logs.Events() {
		text := d.Render(e)
		if e.RunID != runID {
			text = "[" + e.RunID + "] " + text
		}
		writeIndented(w, "      ", strings.TrimRight(text, "\n"))
	}
}

func (c *ConsoleSink) Done(results framework.Results) {
	w, p := c.out(), c.colors()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Invocation %s: %d passed, %d failed, %d errors, %d skipped\n",
		results.InvocationID,
		results.Count(framework.Success),
		results.Count(framework.Failure),
		results.Count(framework.Error),
		len(results.Skipped),
	)
	if results.OK() {
		fmt.Fprintln(w, p.pass.Sprint("All tests passed"))
		return
	}
	fmt.Fprintln(w, p.fail.Sprint("Some tests did not pass:"))
	for _, rec := range results.Records {
		if rec.Result.Kind != framework.Success {
			fmt.Fprintf(w, "  %s %s\n", rec.Result.Kind, rec.TestName)
		}
	}
}

func writeIndented(w io.Writer, indent, text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "%s%s\n", indent, strings.TrimSuffix(line, "\r"))
	}
}

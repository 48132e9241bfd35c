package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/logging"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const jsonTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JSONSink writes one JSON object per line: a "test" line for every finished test case, a
// "skipped" line for every test case excluded by the filters, and a final "summary" line.
type JSONSink struct {
	// Out defaults to os.Stdout.
	Out io.Writer
	// IncludeWire adds the raw request and response text to each "test" line.
	IncludeWire bool
}

func (j *JSONSink) write(v ldvalue.Value) {
	out := j.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, v.JSONString())
}

func (j *JSONSink) TestStarted(name, runID string) {}

func (j *JSONSink) TestSkipped(name, reason string) {
	j.write(ldvalue.ObjectBuild().
		Set("type", ldvalue.String("skipped")).
		Set("test", ldvalue.String(name)).
		Set("reason", ldvalue.String(reason)).
		Build())
}

func (j *JSONSink) TestFinished(record framework.RunRecord) {
	j.write(RecordValue(record, j.IncludeWire))
}

func (j *JSONSink) Done(results framework.Results) {
	j.write(ldvalue.ObjectBuild().
		Set("type", ldvalue.String("summary")).
		Set("invocationId", ldvalue.String(results.InvocationID)).
		Set("passed", ldvalue.Int(results.Count(framework.Success))).
		Set("failed", ldvalue.Int(results.Count(framework.Failure))).
		Set("errors", ldvalue.Int(results.Count(framework.Error))).
		Set("skipped", ldvalue.Int(len(results.Skipped))).
		Set("ok", ldvalue.Bool(results.OK())).
		Build())
}

// RecordValue converts a RunRecord to the JSON object written by JSONSink. Properties that do
// not apply to the record, such as the status of a response that was never received, are null.
func RecordValue(record framework.RunRecord, includeWire bool) ldvalue.Value {
	var status ldvalue.OptionalInt
	if record.Response != nil {
		status = ldvalue.NewOptionalInt(record.Response.Status)
	}
	var message, errorText ldvalue.OptionalString
	switch record.Result.Kind {
	case framework.Failure:
		message = ldvalue.NewOptionalString(record.Result.Message)
	case framework.Error:
		errorText = ldvalue.NewOptionalString(record.Result.Cause.Error())
	}

	clues := ldvalue.ArrayBuild()
	for _, c := range record.Clues {
		clues.Add(ldvalue.String(c))
	}
	logs := ldvalue.ArrayBuild()
	for _, d := range record.Logs {
		logs.Add(logsValue(d, record.RunID))
	}
	flags := logging.InspectLogs(record.Logs, record.RunID)

	obj := ldvalue.ObjectBuild().
		Set("type", ldvalue.String("test")).
		Set("invocationId", ldvalue.String(record.InvocationID)).
		Set("test", ldvalue.String(record.TestName)).
		Set("runId", ldvalue.String(record.RunID)).
		Set("start", ldvalue.String(record.Start.UTC().Format(jsonTimeFormat))).
		Set("result", ldvalue.String(record.Result.Kind.String())).
		Set("message", message.AsValue()).
		Set("error", errorText.AsValue()).
		Set("status", status.AsValue()).
		Set("elapsedMillis", ldvalue.Int(int(record.ElapsedMillis()))).
		Set("maxDurationMillis", ldvalue.Int(int(record.MaxDuration/time.Millisecond))).
		Set("slow", ldvalue.Bool(record.Slow())).
		Set("clues", clues.Build()).
		Set("logs", logs.Build()).
		Set("logErrors", ldvalue.Bool(flags.Errors)).
		Set("logWarnings", ldvalue.Bool(flags.Warnings)).
		Set("foreignLogs", ldvalue.Bool(flags.Foreign))
	if includeWire {
		obj.Set("sent", ldvalue.String(record.Sent.HeaderText()+record.Sent.BodyText()))
		obj.Set("received", ldvalue.String(record.Received.HeaderText()+record.Received.BodyText()))
	}
	return obj.Build()
}

func logsValue(d logging.Details, runID string) ldvalue.Value {
	sources := ldvalue.ArrayBuild()
	for _, n := range d.Names {
		sources.Add(ldvalue.String(n))
	}
	events := ldvalue.ArrayBuild()
	for _, e := range d.Logs.Events() {
		events.Add(ldvalue.ObjectBuild().
			Set("time", ldvalue.String(e.Time.UTC().Format(jsonTimeFormat))).
			Set("runId", ldvalue.String(e.RunID)).
			Set("foreign", ldvalue.Bool(e.RunID != runID)).
			Set("level", ldvalue.String(d.Level(e))).
			Set("message", ldvalue.String(d.Render(e))).
			Build())
	}
	return ldvalue.ObjectBuild().
		Set("sources", sources.Build()).
		Set("overflowed", ldvalue.Bool(d.Logs.Overflowed())).
		Set("events", events.Build()).
		Build()
}

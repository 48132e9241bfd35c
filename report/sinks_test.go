package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/httpwire"
	"github.com/launchdarkly/http-selftest/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func sampleLogs(overflowed bool) []logging.Details {
	b := logging.NewBuffer(1)
	b.Append(logging.Event{RunID: "get-user-1", Time: sampleTime, Level: "INFO", Message: "first"})
	if overflowed {
		b.Append(logging.Event{RunID: "get-user-1", Time: sampleTime, Level: "WARN", Message: "second"})
	}
	return logging.SnapshotAll([]logging.Access{{Names: []string{"app"}, Buffer: b}})
}

func failedRecord() framework.RunRecord {
	req := httpwire.NewRequest("GET", "/users/1").WithHeader(logging.RequestIDHeader, "get-user-1")
	resp := httpwire.Response{Status: 404, Body: "not here"}
	return framework.RunRecord{
		TestName:     "get user",
		InvocationID: "inv",
		RunID:        "get-user-1",
		Start:        sampleTime,
		Elapsed:      150 * time.Millisecond,
		MaxDuration:  100 * time.Millisecond,
		Result:       framework.FailureResult("expected status 200 but was 404"),
		Request:      &req,
		Response:     &resp,
		Sent:         httpwire.SplitDetails([]byte("GET /users/1 HTTP/1.1\r\nHost: localhost:8080\r\n\r\n")),
		Received: httpwire.WireDetails{
			HeaderBlock: []byte("HTTP/1.1 404 Not Found\r\nContent-Length: 8\r\n\r\n"),
			BodyBlock:   []byte("not here"),
		},
		Logs:  sampleLogs(true),
		Clues: []string{"user 1 was chosen"},
	}
}

func TestConsoleSinkFailureWithDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{Out: &buf, NoColor: true, BaseURL: "http://localhost:8080", DebugOutputOnFailure: true}

	sink.TestStarted("get user", "get-user-1")
	sink.TestFinished(failedRecord())
	out := buf.String()

	assert.Contains(t, out, "[get user] get-user-1\n")
	assert.Contains(t, out, "  FAILED: expected status 200 but was 404\n")
	assert.Contains(t, out, "  SLOW: took 150 ms, more than the acceptable 100 ms\n")
	assert.Contains(t, out, "  clue: user 1 was chosen\n")
	assert.Contains(t, out, "    DEBUG reproduce with: curl -i -X GET -H 'X-REQUEST-ID: get-user-1' http://localhost:8080/users/1\n")
	assert.Contains(t, out, "    DEBUG sent:\n      GET /users/1 HTTP/1.1\n      Host: localhost:8080\n")
	assert.Contains(t, out, "      HTTP/1.1 404 Not Found\n")
	assert.Contains(t, out, "      not here\n")
	assert.Contains(t, out, "    DEBUG logs (app):\n      ... earlier events were dropped\n")
	assert.Contains(t, out, "WARN  second")
	assert.NotContains(t, out, "first")
}

func TestConsoleSinkSuccessIsBriefByDefault(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{Out: &buf, NoColor: true, DebugOutputOnFailure: true}
	sink.TestFinished(framework.RunRecord{
		TestName: "ok", Elapsed: 5 * time.Millisecond, MaxDuration: 100 * time.Millisecond,
		Result: framework.SuccessResult(),
	})
	assert.Equal(t, "  PASSED (5 ms)\n", buf.String())
}

func TestConsoleSinkErrorAndHexdump(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{Out: &buf, NoColor: true, DebugOutputOnFailure: true, Hexdump: true}
	sink.TestFinished(framework.RunRecord{
		TestName: "broken",
		Result:   framework.ErrorResult(errors.New("read failed:\nunexpected end of stream")),
		Received: httpwire.WireDetails{HeaderBlock: []byte("HTTP/1.1 2")},
		Logs:     sampleLogs(false)[:0],
	})
	out := buf.String()
	assert.Contains(t, out, "  ERROR:\n    read failed:\n    unexpected end of stream\n")
	assert.Contains(t, out, "    DEBUG sent: nothing\n")
	assert.Contains(t, out, "48 54 54 50 2f 31 2e 31  20 32")
}

func TestConsoleSinkSkippedAndSummary(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{Out: &buf, NoColor: true}
	sink.TestSkipped("slow one", "excluded by filter parameters")
	sink.Done(framework.Results{
		InvocationID: "inv",
		Records:      []framework.RunRecord{failedRecord(), {TestName: "ok", Result: framework.SuccessResult()}},
		Skipped:      []string{"slow one"},
	})
	out := buf.String()
	assert.Contains(t, out, "  SKIPPED: slow one (excluded by filter parameters)\n")
	assert.Contains(t, out, "Invocation inv: 1 passed, 1 failed, 0 errors, 1 skipped\n")
	assert.Contains(t, out, "Some tests did not pass:\n  FAILURE get user\n")
	assert.NotContains(t, out, "  SUCCESS ok")
}

func TestJSONSinkWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := &JSONSink{Out: &buf}
	sink.TestSkipped("slow one", "excluded")
	sink.TestFinished(failedRecord())
	sink.TestFinished(framework.RunRecord{TestName: "broken", Result: framework.ErrorResult(errors.New("timed out"))})
	sink.Done(framework.Results{InvocationID: "inv", Records: []framework.RunRecord{failedRecord()}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var skipped, failed, broken, summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &skipped))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &broken))
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &summary))

	assert.Equal(t, "skipped", skipped["type"])
	assert.Equal(t, "slow one", skipped["test"])

	assert.Equal(t, "test", failed["type"])
	assert.Equal(t, "FAILURE", failed["result"])
	assert.Equal(t, "expected status 200 but was 404", failed["message"])
	assert.Nil(t, failed["error"])
	assert.Equal(t, float64(404), failed["status"])
	assert.Equal(t, float64(150), failed["elapsedMillis"])
	assert.Equal(t, true, failed["slow"])
	assert.Equal(t, "2024-03-01T12:30:00.000Z", failed["start"])
	assert.Equal(t, []interface{}{"user 1 was chosen"}, failed["clues"])
	logs := failed["logs"].([]interface{})
	require.Len(t, logs, 1)
	assert.Equal(t, true, logs[0].(map[string]interface{})["overflowed"])
	assert.NotContains(t, failed, "sent")

	assert.Equal(t, "ERROR", broken["result"])
	assert.Equal(t, "timed out", broken["error"])
	assert.Nil(t, broken["status"])
	assert.Nil(t, broken["message"])

	assert.Equal(t, "summary", summary["type"])
	assert.Equal(t, float64(1), summary["failed"])
	assert.Equal(t, false, summary["ok"])
}

func TestRecordValueWithWire(t *testing.T) {
	v := RecordValue(failedRecord(), true)
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\nContent-Length: 8\r\n\r\nnot here", v.GetByKey("received").StringValue())
	assert.True(t, strings.HasPrefix(v.GetByKey("sent").StringValue(), "GET /users/1 HTTP/1.1\r\n"))
}

type markingRenderer struct{}

func (markingRenderer) Render(e logging.Event) string { return "RENDERED:" + e.Message }

func (markingRenderer) Level(e logging.Event) string {
	if e.Level == "severe" {
		return "ERROR"
	}
	return "CUSTOM"
}

func renderedRecord() framework.RunRecord {
	b := logging.NewBuffer(10)
	b.Append(logging.Event{RunID: "r-1", Time: sampleTime, Level: "raw", Message: "msg"})
	b.Append(logging.Event{RunID: "r-2", Time: sampleTime, Level: "severe", Message: "other"})
	return framework.RunRecord{
		TestName: "rendered",
		RunID:    "r-1",
		Result:   framework.FailureResult("nope"),
		Logs: logging.SnapshotAll([]logging.Access{
			{Names: []string{"app"}, Buffer: b, Renderer: markingRenderer{}},
		}),
	}
}

func TestRecordValueUsesRendererAndFlagsLogs(t *testing.T) {
	v := RecordValue(renderedRecord(), false)

	events := v.GetByKey("logs").GetByIndex(0).GetByKey("events")
	require.Equal(t, 2, events.Count())
	first, second := events.GetByIndex(0), events.GetByIndex(1)
	assert.Equal(t, "RENDERED:msg", first.GetByKey("message").StringValue())
	assert.Equal(t, "CUSTOM", first.GetByKey("level").StringValue())
	assert.False(t, first.GetByKey("foreign").BoolValue())
	assert.Equal(t, "ERROR", second.GetByKey("level").StringValue())
	assert.True(t, second.GetByKey("foreign").BoolValue())
	assert.Equal(t, "r-2", second.GetByKey("runId").StringValue())

	assert.True(t, v.GetByKey("logErrors").BoolValue())
	assert.False(t, v.GetByKey("logWarnings").BoolValue())
	assert.True(t, v.GetByKey("foreignLogs").BoolValue())
}

func TestConsoleSinkUsesRendererAndFlagsLogs(t *testing.T) {
	var buf bytes.Buffer
	sink := &ConsoleSink{Out: &buf, NoColor: true, DebugOutputOnFailure: true}
	sink.TestFinished(renderedRecord())
	out := buf.String()

	assert.Contains(t, out, "  LOGS: the application logged errors\n")
	assert.Contains(t, out, "  LOGS: some log output belongs to other requests\n")
	assert.NotContains(t, out, "logged warnings")
	assert.Contains(t, out, "      RENDERED:msg\n")
	assert.Contains(t, out, "      [r-2] RENDERED:other\n")
}

func TestConsoleSinkDumpsRunnerDebugOutput(t *testing.T) {
	runnerLog := logging.NewCapturingLogger(func() time.Time { return sampleTime })
	runnerLog.Printf("[r-1] Sending GET /x")
	record := renderedRecord()
	record.DebugOutput = runnerLog.Output()

	var buf bytes.Buffer
	(&ConsoleSink{Out: &buf, NoColor: true, DebugOutputOnFailure: true}).TestFinished(record)
	assert.Contains(t, buf.String(), "    DEBUG [2024-03-01 12:30:00.000] [r-1] Sending GET /x\n")

	buf.Reset()
	(&ConsoleSink{Out: &buf, NoColor: true}).TestFinished(record)
	assert.NotContains(t, buf.String(), "DEBUG")
}

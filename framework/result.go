package framework

import (
	"time"

	"github.com/launchdarkly/http-selftest/httpwire"
	"github.com/launchdarkly/http-selftest/logging"
)

// ResultKind is the outcome category of a test case.
type ResultKind int

const (
	// Success means the response passed verification.
	Success ResultKind = iota
	// Failure means verification rejected the response with an AssertionError.
	Failure
	// Error means the test case could not be completed: the request could not be built or sent,
	// no valid response was received, or the test code failed in an unexpected way.
	Error
)

func (k ResultKind) String() string {
	switch k {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of a test case. Message is only set for Failure, and Cause only for
// Error.
type Result struct {
	Kind    ResultKind
	Message string
	Cause   error
}

func SuccessResult() Result { return Result{Kind: Success} }

func FailureResult(message string) Result { return Result{Kind: Failure, Message: message} }

func ErrorResult(cause error) Result { return Result{Kind: Error, Cause: cause} }

// RunRecord describes one execution of a test case. It is handed to the ReportSink once the test
// case is finished and is not modified after that.
type RunRecord struct {
	TestName     string
	InvocationID string
	RunID        string
	Start        time.Time
	Elapsed      time.Duration
	MaxDuration  time.Duration
	Result       Result

	// Request is nil if the test case failed to build one.
	Request *httpwire.Request
	// Response is nil unless a complete response was received.
	Response *httpwire.Response
	// Sent and Received are the raw bytes that went over the wire. After a transport error,
	// Received holds the partial response, if any.
	Sent     httpwire.WireDetails
	Received httpwire.WireDetails

	Logs  []logging.Details
	Clues []string
	// DebugOutput is the runner's own diagnostic output for this test case.
	DebugOutput logging.CapturedOutput
}

// ElapsedMillis returns the duration of the HTTP call in whole milliseconds.
func (r RunRecord) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}

// Slow returns true if the HTTP call took longer than the test case considers acceptable.
func (r RunRecord) Slow() bool {
	return r.MaxDuration > 0 && r.Elapsed > r.MaxDuration
}

// Results is the outcome of a whole sequence.
type Results struct {
	InvocationID string
	Records      []RunRecord
	Skipped      []string
}

// OK returns true if every test case that ran was successful.
func (r Results) OK() bool {
	for _, rec := range r.Records {
		if rec.Result.Kind != Success {
			return false
		}
	}
	return true
}

// Count returns the number of records with the given result kind.
func (r Results) Count(kind ResultKind) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Result.Kind == kind {
			n++
		}
	}
	return n
}

package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/http-selftest/client"
	"github.com/launchdarkly/http-selftest/httpwire"
	"github.com/launchdarkly/http-selftest/logging"

	"github.com/google/uuid"
)

// ErrAlreadyRunning is returned by RunAll if another sequence is in progress.
var ErrAlreadyRunning = errors.New("the self test is currently in use; try again in a few seconds")

const maxWaitForLogs = time.Millisecond * 5000

// Caller sends one request. *client.Transport is the implementation used outside of tests.
type Caller interface {
	Call(baseURL string, req httpwire.Request, timeout time.Duration) (client.Exchange, error)
}

// Options configure a Runner. Zero values select the defaults.
type Options struct {
	// Timeout applies to each HTTP call; the default is client.DefaultTimeout.
	Timeout time.Duration
	// LogSupport provides the application's log output; the default captures nothing.
	LogSupport logging.Support
	// Logger receives debug output about the runner itself.
	Logger logging.Logger
	// Filter selects the test cases to run; the default runs all of them.
	Filter Filter
	// RunIDs generates run ids. Runners that share a generator never produce the same id.
	RunIDs *RunIDGenerator
	// Lock is held for the duration of RunAll. Runners that share a lock never run at the same
	// time.
	Lock *sync.Mutex
	// Sleep is used to wait for log output; the default is time.Sleep.
	Sleep func(time.Duration)
}

// Runner executes sequences of test cases.
type Runner struct {
	caller     Caller
	timeout    time.Duration
	logSupport logging.Support
	logger     logging.Logger
	filter     Filter
	runIDs     *RunIDGenerator
	lock       *sync.Mutex
	sleep      func(time.Duration)
}

// NewRunner creates a Runner that sends requests through caller.
func NewRunner(caller Caller, opts Options) *Runner {
	r := &Runner{
		caller:     caller,
		timeout:    opts.Timeout,
		logSupport: opts.LogSupport,
		logger:     opts.Logger,
		filter:     opts.Filter,
		runIDs:     opts.RunIDs,
		lock:       opts.Lock,
		sleep:      opts.Sleep,
	}
	if r.timeout <= 0 {
		r.timeout = client.DefaultTimeout
	}
	if r.logSupport == nil {
		r.logSupport = logging.InactiveSupport{}
	}
	if r.logger == nil {
		r.logger = logging.NullLogger()
	}
	if r.runIDs == nil {
		r.runIDs = &RunIDGenerator{}
	}
	if r.lock == nil {
		r.lock = &sync.Mutex{}
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	return r
}

// RunAll runs the test cases one after another, ordered by name, against the application at
// baseURL. Each result is passed to sink as soon as it is available, and sink.Done is called at
// the end. Test case failures of any kind are recorded in the results; the returned error is
// only ever ErrAlreadyRunning, in which case nothing was run and sink was not called.
func (r *Runner) RunAll(tests []TestCase, config Values, baseURL string, sink ReportSink) (Results, error) {
	if !r.lock.TryLock() {
		return Results{}, ErrAlreadyRunning
	}
	defer r.lock.Unlock()

	if sink == nil {
		sink = nullReportSink{}
	}
	results := Results{InvocationID: uuid.NewString()}

	ordered := append([]TestCase(nil), tests...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name() < ordered[j].Name() })

	var selected []TestCase
	for _, tc := range ordered {
		if r.filter != nil && !r.filter(tc.Name()) {
			sink.TestSkipped(tc.Name(), "excluded by filter parameters")
			results.Skipped = append(results.Skipped, tc.Name())
			continue
		}
		selected = append(selected, tc)
	}

	runIDs := make([]string, len(selected))
	for i, tc := range selected {
		runIDs[i] = r.runIDs.Next(tc.Name())
	}

	r.logger.Printf("Starting invocation %s with %d test cases", results.InvocationID, len(selected))
	ctx := NewContext()
	r.logSupport.RunWithAttachedAppenders(runIDs, func() {
		for i, tc := range selected {
			ctx.resetClues()
			sink.TestStarted(tc.Name(), runIDs[i])
			record := r.execute(tc, runIDs[i], config, baseURL, ctx)
			record.InvocationID = results.InvocationID
			results.Records = append(results.Records, record)
			sink.TestFinished(record)
		}
	})

	sink.Done(results)
	return results, nil
}

func (r *Runner) execute(tc TestCase, runID string, config Values, baseURL string, ctx *Context) RunRecord {
	record := RunRecord{
		TestName: tc.Name(),
		RunID:    runID,
		Start:    time.Now(),
	}
	captured := logging.NewCapturingLogger(time.Now)
	logger := logging.MultiLogger(r.logger, captured)
	func() {
		defer func() {
			if p := recover(); p != nil {
				record.Result = ErrorResult(fmt.Errorf("unexpected panic in test: %+v\n%s", p, string(debug.Stack())))
			}
		}()
		record.Result = r.runPhases(tc, runID, config, baseURL, ctx, logger, &record)
	}()
	record.Clues = ctx.Clues()
	logger.Printf("[%s] %s in %d ms", runID, record.Result.Kind, record.ElapsedMillis())
	record.DebugOutput = captured.Output()
	return record
}

func (r *Runner) runPhases(
	tc TestCase,
	runID string,
	config Values,
	baseURL string,
	ctx *Context,
	logger logging.Logger,
	record *RunRecord,
) Result {
	record.MaxDuration = time.Duration(tc.MaxAcceptableDurationMillis()) * time.Millisecond

	req, err := tc.PrepareRequest(config, ctx)
	if err != nil {
		return ErrorResult(fmt.Errorf("failed to prepare request: %w", err))
	}
	if req.Headers.Has(logging.RequestIDHeader) {
		return ErrorResult(fmt.Errorf("header %s must not be set by the test case", logging.RequestIDHeader))
	}
	req = req.WithHeader(logging.RequestIDHeader, runID)
	record.Request = &req

	logger.Printf("[%s] Sending %s %s", runID, req.Method, req.Path)
	start := time.Now()
	exchange, callErr := r.caller.Call(baseURL, req, r.timeout)
	record.Elapsed = time.Since(start)

	if callErr == nil {
		record.Sent = exchange.Sent
		record.Received = exchange.Received
	} else {
		var te *client.TransportError
		if errors.As(callErr, &te) {
			record.Sent = te.SentDetails()
			record.Received = te.PartialResponse()
		}
	}

	wait := clampWaitForLogs(tc.WaitForLogsMillis())
	logger.Printf("[%s] Waiting %s for log output", runID, wait)
	r.sleep(wait)
	record.Logs = logging.SnapshotAll(r.logSupport.Logs(runID))
	for _, d := range record.Logs {
		logger.Printf("[%s] Captured %d events from %s", runID, d.Logs.Len(), strings.Join(d.Names, ", "))
	}

	if callErr != nil {
		logger.Printf("[%s] Call failed after %s: %s", runID, record.Elapsed, callErr)
		return ErrorResult(callErr)
	}
	resp := exchange.Response.Clone()
	record.Response = &resp

	if err := tc.Verify(config, exchange.Response, ctx); err != nil {
		var ae *AssertionError
		if errors.As(err, &ae) {
			return FailureResult(ae.Message)
		}
		return ErrorResult(err)
	}
	return SuccessResult()
}

func clampWaitForLogs(millis int) time.Duration {
	if millis < 0 {
		millis = 0
	}
	if max := int(maxWaitForLogs / time.Millisecond); millis > max {
		millis = max
	}
	return time.Duration(millis) * time.Millisecond
}

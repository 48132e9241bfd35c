// Package framework runs HTTP test cases against an application and collects the results.
//
// The general model is:
//
// 1. A test case builds a request, and later verifies the response. Test cases are supplied by
// the caller as a list; they run one at a time, in the order of their names.
//
// 2. Every test case gets a run id, which is sent to the application in the X-REQUEST-ID header.
// While the test cases run, the application's log output is captured per run id through a
// logging.Support, so that each result shows the log lines that belong to it.
//
// 3. Each test case produces exactly one RunRecord, which is handed to a ReportSink as soon as it
// is complete. Failures of individual test cases never stop the sequence.
//
// Only one sequence can run at a time; Runner.RunAll returns ErrAlreadyRunning instead of
// waiting.
package framework

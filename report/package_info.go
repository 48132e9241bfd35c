// Package report contains implementations of framework.ReportSink: a console report for people,
// a JSON lines report for other tools, and a sink that decouples a slow report from the runner.
package report

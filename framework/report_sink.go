package framework

// ReportSink receives the results of a sequence while it runs. TestFinished is called for each
// test case as soon as it is complete, in execution order, and Done is called exactly once after
// the last one. Implementations should return quickly, since the runner waits for them.
type ReportSink interface {
	TestStarted(name, runID string)
	TestSkipped(name, reason string)
	TestFinished(record RunRecord)
	Done(results Results)
}

type nullReportSink struct{}

func (n nullReportSink) TestStarted(string, string) {}
func (n nullReportSink) TestSkipped(string, string) {}
func (n nullReportSink) TestFinished(RunRecord)     {}
func (n nullReportSink) Done(Results)               {}

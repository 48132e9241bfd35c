package report

import (
	"sync"

	"github.com/launchdarkly/http-selftest/framework"
)

// AsyncSink passes everything on to another ReportSink on a separate goroutine, so that a slow
// report (a terminal, a network connection) does not add to the duration the runner measures.
// Calls reach the wrapped sink in the order they were made. Done blocks until the wrapped sink
// has received everything, including the Done call itself. After Done, the AsyncSink cannot be
// used again.
type AsyncSink struct {
	target    framework.ReportSink
	ch        chan func()
	finished  chan struct{}
	closeOnce sync.Once
}

// NewAsyncSink starts a goroutine that forwards to target. Up to channelSize calls can be queued
// before the caller has to wait.
func NewAsyncSink(target framework.ReportSink, channelSize int) *AsyncSink {
	s := &AsyncSink{
		target:   target,
		ch:       make(chan func(), channelSize),
		finished: make(chan struct{}),
	}
	go s.forward()
	return s
}

func (s *AsyncSink) forward() {
	for call := range s.ch {
		call()
	}
	close(s.finished)
}

func (s *AsyncSink) TestStarted(name, runID string) {
	s.ch <- func() { s.target.TestStarted(name, runID) }
}

func (s *AsyncSink) TestSkipped(name, reason string) {
	s.ch <- func() { s.target.TestSkipped(name, reason) }
}

func (s *AsyncSink) TestFinished(record framework.RunRecord) {
	s.ch <- func() { s.target.TestFinished(record) }
}

func (s *AsyncSink) Done(results framework.Results) {
	s.closeOnce.Do(func() {
		s.ch <- func() { s.target.Done(results) }
		close(s.ch)
	})
	<-s.finished
}

package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout this module. It is satisfied by the
// standard *log.Logger.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

// CapturedMessage is a message received by a CapturingLogger.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is the list of messages held by a CapturingLogger.
type CapturedOutput []CapturedMessage

// CapturingLogger keeps every message in memory. The runner gives each test case its own
// CapturingLogger, so that its diagnostics end up in the record of that test case. It is safe for
// concurrent use, and the zero value is ready to use.
type CapturingLogger struct {
	output []CapturedMessage
	now    func() time.Time
	lock   sync.Mutex
}

// NewCapturingLogger creates a CapturingLogger that takes timestamps from now.
func NewCapturingLogger(now func() time.Time) *CapturingLogger {
	return &CapturingLogger{now: now}
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	t := time.Now()
	if l.now != nil {
		t = l.now()
	}
	l.output = append(l.output, CapturedMessage{Time: t, Message: fmt.Sprintf(message, args...)})
}

// Output returns a copy of all messages captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	if len(l.output) == 0 {
		return nil
	}
	return append(CapturedOutput(nil), l.output...)
}

// Dump writes each message preceded by the prefix and a timestamp. Continuation lines of a
// multi-line message are indented to line up with the first one.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		stamp := "[" + m.Time.Format(timestampFormat) + "] "
		lines := strings.Split(strings.TrimRight(m.Message, "\n"), "\n")
		fmt.Fprintf(dest, "%s%s%s\n", prefix, stamp, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(dest, "%s%s%s\n", prefix, strings.Repeat(" ", len(stamp)), line)
		}
	}
}

type multiLogger []Logger

func (m multiLogger) Printf(message string, args ...interface{}) {
	for _, l := range m {
		l.Printf(message, args...)
	}
}

// MultiLogger returns a Logger that sends every message to all of the given loggers. Nil loggers
// are skipped.
func MultiLogger(loggers ...Logger) Logger {
	var ret multiLogger
	for _, l := range loggers {
		if l != nil {
			ret = append(ret, l)
		}
	}
	return ret
}

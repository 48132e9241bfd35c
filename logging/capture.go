package logging

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultSourceName is the log source used by a CaptureSupport that was created without any.
const DefaultSourceName = "application"

// Source is a named stream of application log output, such as "app" or "access".
type Source struct {
	Name string
	// Buffer is the name of the buffer this source writes to. Sources with the same Buffer name
	// share one Buffer per run id. If empty, the source has a buffer of its own.
	Buffer   string
	Renderer Renderer
}

func (s Source) bufferName() string {
	if s.Buffer == "" {
		return s.Name
	}
	return s.Buffer
}

// CaptureSupport is a Support for applications that log through this package. While a test run
// is active, every event emitted with a context carrying one of the run's ids is appended to the
// Buffer for that run id and source. Outside of a run, and for unknown run ids, events are only
// passed on to the application's own Logger.
type CaptureSupport struct {
	capacity   int
	sources    []Source
	byName     map[string]Source
	now        func() time.Time
	buffers    map[string]map[string]*Buffer // run id -> buffer name -> buffer
	lock       sync.Mutex
	attachLock sync.Mutex
}

// NewCaptureSupport creates a CaptureSupport. Each Buffer holds up to capacity events; zero
// means DefaultCapacity. If no sources are given, there is a single source named
// DefaultSourceName.
func NewCaptureSupport(capacity int, sources ...Source) *CaptureSupport {
	if len(sources) == 0 {
		sources = []Source{{Name: DefaultSourceName}}
	}
	s := &CaptureSupport{
		capacity: capacity,
		sources:  append([]Source(nil), sources...),
		byName:   make(map[string]Source, len(sources)),
		now:      time.Now,
	}
	for _, src := range sources {
		s.byName[src.Name] = src
	}
	return s
}

// RunWithAttachedAppenders implements Support. Only one run can be attached at a time; a second
// caller waits until the first one is done.
func (s *CaptureSupport) RunWithAttachedAppenders(runIDs []string, action func()) {
	s.attachLock.Lock()
	defer s.attachLock.Unlock()
	s.attach(runIDs)
	defer s.detach()
	action()
}

func (s *CaptureSupport) attach(runIDs []string) {
	buffers := make(map[string]map[string]*Buffer, len(runIDs))
	for _, id := range runIDs {
		byBuffer := make(map[string]*Buffer)
		for _, src := range s.sources {
			if _, ok := byBuffer[src.bufferName()]; !ok {
				byBuffer[src.bufferName()] = NewBuffer(s.capacity)
			}
		}
		buffers[id] = byBuffer
	}
	s.lock.Lock()
	s.buffers = buffers
	s.lock.Unlock()
}

func (s *CaptureSupport) detach() {
	s.lock.Lock()
	s.buffers = nil
	s.lock.Unlock()
}

// Logs implements Support. It returns one Access per source, in the order the sources were
// defined.
func (s *CaptureSupport) Logs(runID string) []Access {
	s.lock.Lock()
	buffers := s.buffers[runID]
	s.lock.Unlock()
	if buffers == nil {
		return nil
	}
	ret := make([]Access, 0, len(s.sources))
	for _, src := range s.sources {
		ret = append(ret, Access{
			Names:    []string{src.Name},
			Buffer:   buffers[src.bufferName()],
			Renderer: src.Renderer,
		})
	}
	return ret
}

// Emit records a log event for the run id found in ctx, if there is one and it is being
// captured. It returns true if the event was captured.
func (s *CaptureSupport) Emit(ctx context.Context, source, level, message string) bool {
	runID, ok := RunIDFromContext(ctx)
	if !ok {
		return false
	}
	src, ok := s.byName[source]
	if !ok {
		return false
	}
	s.lock.Lock()
	buffer := s.buffers[runID][src.bufferName()]
	s.lock.Unlock()
	if buffer == nil {
		return false
	}
	buffer.Append(Event{
		RunID:   runID,
		Time:    s.now(),
		Level:   level,
		Source:  source,
		Message: message,
	})
	return true
}

// Logger returns a Logger for application code handling the request that ctx belongs to. Every
// message goes to next (if not nil) and, during a test run, to the capture buffer of the source.
func (s *CaptureSupport) Logger(ctx context.Context, source string, next Logger) *SourceLogger {
	if next == nil {
		next = NullLogger()
	}
	return &SourceLogger{support: s, ctx: ctx, source: source, level: "INFO", next: next}
}

// SourceLogger is the Logger returned by CaptureSupport.Logger.
type SourceLogger struct {
	support *CaptureSupport
	ctx     context.Context
	source  string
	level   string
	next    Logger
}

// WithLevel returns a copy of the logger that tags its events with a different level.
func (l *SourceLogger) WithLevel(level string) *SourceLogger {
	ret := *l
	ret.level = level
	return &ret
}

func (l *SourceLogger) Printf(message string, args ...interface{}) {
	text := fmt.Sprintf(message, args...)
	l.next.Printf("%s", text)
	l.support.Emit(l.ctx, l.source, l.level, text)
}

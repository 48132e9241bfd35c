package logging

import (
	"fmt"
	"strings"
)

// Renderer turns captured events into text for a report.
type Renderer interface {
	Render(e Event) string
	Level(e Event) string
}

// DefaultRenderer renders an event as "timestamp LEVEL message".
type DefaultRenderer struct{}

func (DefaultRenderer) Render(e Event) string {
	return fmt.Sprintf("%s %-5s %s", e.Time.Format(timestampFormat), e.Level, e.Message)
}

func (DefaultRenderer) Level(e Event) string {
	if e.Level == "" {
		return "unknown"
	}
	return e.Level
}

// Access describes where the logs of one run id can be found for one log source. Several Access
// values may point to the same Buffer if their sources share it.
type Access struct {
	Names    []string
	Buffer   *Buffer
	Renderer Renderer
}

// Details is the captured output of one log source for one run id.
type Details struct {
	Names    []string
	Logs     Snapshot
	Renderer Renderer
}

func (d Details) renderer() Renderer {
	if d.Renderer == nil {
		return DefaultRenderer{}
	}
	return d.Renderer
}

// Render returns the text of an event as the source's Renderer lays it out.
func (d Details) Render(e Event) string {
	return d.renderer().Render(e)
}

// Level returns the level of an event as the source's Renderer reports it.
func (d Details) Level(e Event) string {
	return d.renderer().Level(e)
}

// LogFlags marks captured output that deserves attention in a report, even if the test case
// passed.
type LogFlags struct {
	// Errors is set if any event has level ERROR.
	Errors bool
	// Warnings is set if any event has level WARN.
	Warnings bool
	// Foreign is set if any event was tagged with a run id other than the one being inspected,
	// which means another request was being handled at the same time.
	Foreign bool
	// Overflowed is set if any buffer dropped events.
	Overflowed bool
}

// Any returns true if at least one flag is set.
func (f LogFlags) Any() bool {
	return f.Errors || f.Warnings || f.Foreign || f.Overflowed
}

// InspectLogs computes the LogFlags of the logs captured for runID. Levels are taken from each
// source's Renderer.
func InspectLogs(details []Details, runID string) LogFlags {
	var f LogFlags
	for _, d := range details {
		if d.Logs.Overflowed() {
			f.Overflowed = true
		}
		for _, e := range d.Logs.events {
			level := d.Level(e)
			f.Errors = f.Errors || strings.EqualFold(level, "ERROR")
			f.Warnings = f.Warnings || strings.EqualFold(level, "WARN")
			f.Foreign = f.Foreign || e.RunID != runID
		}
	}
	return f
}

// SnapshotAll takes a snapshot of every distinct Buffer referenced by the given list exactly
// once, and returns one Details per Access in the same order. Sources that share a Buffer get the
// same Snapshot; snapshotting the Buffer again for the second source would return nothing, since
// taking a snapshot clears it.
func SnapshotAll(accesses []Access) []Details {
	snapshots := make(map[*Buffer]Snapshot, len(accesses))
	for _, a := range accesses {
		if a.Buffer == nil {
			continue
		}
		if _, ok := snapshots[a.Buffer]; !ok {
			snapshots[a.Buffer] = a.Buffer.Snapshot()
		}
	}
	ret := make([]Details, 0, len(accesses))
	for _, a := range accesses {
		renderer := a.Renderer
		if renderer == nil {
			renderer = DefaultRenderer{}
		}
		ret = append(ret, Details{
			Names:    append([]string(nil), a.Names...),
			Logs:     snapshots[a.Buffer],
			Renderer: renderer,
		})
	}
	return ret
}

// Support is the connection between the test runner and whatever logging the application does.
type Support interface {
	// RunWithAttachedAppenders calls action while log capture is active for exactly the given
	// run ids. Capture is always stopped before it returns, even if action panics.
	RunWithAttachedAppenders(runIDs []string, action func())

	// Logs returns the places where events for the run id are being collected. It is only
	// meaningful while RunWithAttachedAppenders is executing.
	Logs(runID string) []Access
}

// InactiveSupport is a Support that captures nothing. Use it when the application's logs are not
// reachable, for instance when testing a remote service.
type InactiveSupport struct{}

func (InactiveSupport) RunWithAttachedAppenders(runIDs []string, action func()) {
	action()
}

func (InactiveSupport) Logs(runID string) []Access {
	return nil
}

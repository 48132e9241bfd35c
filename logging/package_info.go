// Package logging contains the Logger interface used by the rest of this module, and the
// facilities for capturing the log output an application produces while it handles test
// requests.
//
// Captured events are kept per run id in a bounded Buffer. A Support implementation decides
// which buffers exist during a test run; CaptureSupport is the implementation for applications
// that route their logging through it, and RequestIDMiddleware connects incoming test requests to
// the right buffers.
package logging

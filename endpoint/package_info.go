// Package endpoint lets an application serve its own self test over HTTP. The application mounts
// a Handler next to its regular routes; a POST to the handler runs the test cases against the
// application itself, with log capture if the application logs through logging.CaptureSupport.
package endpoint

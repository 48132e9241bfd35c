// Package suite reads test cases from a YAML file, so that simple request/response checks can be
// run without writing Go code.
package suite

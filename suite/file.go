package suite

import (
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/http-selftest/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// File is the content of a suite file:
//
//	baseUrl: http://localhost:8080/api
//	timeoutMillis: 2000
//	params:
//	  user: alice
//	tests:
//	  - name: create item
//	    method: POST
//	    path: /items
//	    headers:
//	      Content-Type: application/json
//	    body: '{"owner": "${user}"}'
//	    expect:
//	      status: 201
//	    store:
//	      itemLocation: Location
//	  - name: read item
//	    path: ${itemLocation}
//	    expect:
//	      status: 200
//	      bodyContains: [alice]
type File struct {
	BaseURL       string            `yaml:"baseUrl"`
	TimeoutMillis *int              `yaml:"timeoutMillis"`
	Params        map[string]string `yaml:"params"`
	Tests         []TestSpec        `yaml:"tests"`
}

// TestSpec describes one test case. Method defaults to GET. Path, header values, body and
// expected body fragments may refer to params and stored values as ${name}.
type TestSpec struct {
	Name              string            `yaml:"name"`
	Method            string            `yaml:"method"`
	Path              string            `yaml:"path"`
	Headers           HeaderList        `yaml:"headers"`
	Body              *string           `yaml:"body"`
	Expect            Expectation       `yaml:"expect"`
	Store             map[string]string `yaml:"store"`
	WaitForLogsMillis *int              `yaml:"waitForLogsMillis"`
	MaxDurationMillis *int              `yaml:"maxDurationMillis"`
}

// Expectation lists the checks applied to the response. Unset fields are not checked.
type Expectation struct {
	Status       *int       `yaml:"status"`
	Headers      HeaderList `yaml:"headers"`
	BodyContains []string   `yaml:"bodyContains"`
}

// LoadFile reads and validates a suite file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates the YAML content of a suite file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse suite YAML: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.TimeoutMillis != nil && *f.TimeoutMillis <= 0 {
		return fmt.Errorf("timeoutMillis must be positive")
	}
	names := make(map[string]bool, len(f.Tests))
	for i, t := range f.Tests {
		if t.Name == "" {
			return fmt.Errorf("tests[%d]: name is required", i)
		}
		if names[t.Name] {
			return fmt.Errorf("tests[%d]: duplicate name %q", i, t.Name)
		}
		names[t.Name] = true
		if t.Path == "" {
			return fmt.Errorf("tests[%d] (%s): path is required", i, t.Name)
		}
		if t.Expect.Status != nil && (*t.Expect.Status < 100 || *t.Expect.Status > 999) {
			return fmt.Errorf("tests[%d] (%s): invalid expected status %d", i, t.Name, *t.Expect.Status)
		}
	}
	return nil
}

// Timeout returns the HTTP call timeout, if the file sets one.
func (f *File) Timeout() (time.Duration, bool) {
	millis := ldvalue.NewOptionalIntFromPointer(f.TimeoutMillis)
	return time.Duration(millis.IntValue()) * time.Millisecond, millis.IsDefined()
}

// Values returns the params shared by all test cases.
func (f *File) Values() framework.Values {
	ret := make(framework.Values, len(f.Params))
	for k, v := range f.Params {
		ret[k] = v
	}
	return ret
}

// TestCases returns a TestCase for each test in the file.
func (f *File) TestCases() []framework.TestCase {
	ret := make([]framework.TestCase, 0, len(f.Tests))
	for _, t := range f.Tests {
		ret = append(ret, newDeclaredTest(t))
	}
	return ret
}

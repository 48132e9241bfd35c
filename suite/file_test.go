package suite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/httpwire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSuite = `
baseUrl: http://localhost:8080/api
timeoutMillis: 2000
params:
  user: alice
tests:
  - name: create item
    method: post
    path: /items
    headers:
      Content-Type: application/json
      Accept: text/plain
    body: '{"owner": "${user}"}'
    expect:
      status: 201
      headers:
        - {name: Content-Type, value: application/json}
    store:
      item: Location
    waitForLogsMillis: 0
  - name: read item
    path: ${item}
    headers:
      - {name: Accept, value: text/plain}
      - {name: Accept, value: text/html}
    expect:
      bodyContains: ["${user}"]
    maxDurationMillis: 500
`

func TestParseSuite(t *testing.T) {
	f, err := Parse([]byte(sampleSuite))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", f.BaseURL)
	timeout, ok := f.Timeout()
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, timeout)
	assert.Equal(t, framework.Values{"user": "alice"}, f.Values())

	require.Len(t, f.Tests, 2)
	assert.Equal(t, HeaderList{{Name: "Content-Type", Value: "application/json"}, {Name: "Accept", Value: "text/plain"}},
		f.Tests[0].Headers)
	assert.Equal(t, HeaderList{{Name: "Accept", Value: "text/plain"}, {Name: "Accept", Value: "text/html"}},
		f.Tests[1].Headers)
	assert.Equal(t, 201, *f.Tests[0].Expect.Status)
	assert.Nil(t, f.Tests[1].Expect.Status)
	assert.Nil(t, f.Tests[1].Body)

	tests := f.TestCases()
	require.Len(t, tests, 2)
	assert.Equal(t, 0, tests[0].WaitForLogsMillis())
	assert.Equal(t, 100, tests[0].MaxAcceptableDurationMillis())
	assert.Equal(t, 20, tests[1].WaitForLogsMillis())
	assert.Equal(t, 500, tests[1].MaxAcceptableDurationMillis())
}

func TestSuiteDefaults(t *testing.T) {
	f, err := Parse([]byte("tests: []\n"))
	require.NoError(t, err)
	_, ok := f.Timeout()
	assert.False(t, ok)
	assert.Empty(t, f.Values())
	assert.Empty(t, f.TestCases())
}

func TestInvalidSuites(t *testing.T) {
	for _, tc := range []struct{ name, yaml, message string }{
		{"no name", "tests: [{path: /}]", "tests[0]: name is required"},
		{"no path", "tests: [{name: a}]", "tests[0] (a): path is required"},
		{"duplicate", "tests: [{name: a, path: /}, {name: a, path: /}]", `tests[1]: duplicate name "a"`},
		{"bad status", "tests: [{name: a, path: /, expect: {status: 42}}]", "invalid expected status 42"},
		{"bad timeout", "timeoutMillis: 0", "timeoutMillis must be positive"},
		{"scalar headers", "tests: [{name: a, path: /, headers: x}]", "headers must be a mapping or a list"},
		{"header without name", "tests: [{name: a, path: /, headers: [{value: x}]}]", "header name is required"},
		{"not yaml", "tests: [", "failed to parse suite YAML"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSuite), 0o600))
	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Tests, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDeclaredTestBuildsRequest(t *testing.T) {
	f, err := Parse([]byte(sampleSuite))
	require.NoError(t, err)
	ctx := framework.NewContext()

	req, err := f.TestCases()[0].PrepareRequest(f.Values(), ctx)
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/items", req.Path)
	assert.Equal(t, []httpwire.Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Accept", Value: "text/plain"},
	}, req.Headers.Pairs())
	assert.Equal(t, `{"owner": "alice"}`, req.Body.StringValue())
	assert.Empty(t, ctx.Clues())
}

func TestDeclaredTestWithUnknownPlaceholder(t *testing.T) {
	f, err := Parse([]byte(sampleSuite))
	require.NoError(t, err)

	_, err = f.TestCases()[1].PrepareRequest(f.Values(), framework.NewContext())
	assert.EqualError(t, err, "no param or stored value for item")
}

func TestDeclaredTestVerifiesAndStores(t *testing.T) {
	f, err := Parse([]byte(sampleSuite))
	require.NoError(t, err)
	tests, config, ctx := f.TestCases(), f.Values(), framework.NewContext()

	resp := httpwire.Response{
		Status: 201,
		Headers: httpwire.NewHeaders(
			httpwire.Header{Name: "content-type", Value: "application/json"},
			httpwire.Header{Name: "Location", Value: "/items/7"},
		),
	}
	require.NoError(t, tests[0].Verify(config, resp, ctx))
	stored, ok := ctx.Retrieve("item")
	assert.True(t, ok)
	assert.Equal(t, "/items/7", stored)

	req, err := tests[1].PrepareRequest(config, ctx)
	require.NoError(t, err)
	assert.Equal(t, "/items/7", req.Path)
	assert.Equal(t, []string{"text/plain", "text/html"}, req.Headers.Values("accept"))
	assert.Equal(t, []string{"using stored value for item"}, ctx.Clues())

	assert.NoError(t, tests[1].Verify(config, httpwire.Response{Status: 200, Body: "owner alice"}, ctx))
	err = tests[1].Verify(config, httpwire.Response{Status: 200, Body: "owner bob"}, ctx)
	assert.IsType(t, &framework.AssertionError{}, err)
}

func TestDeclaredTestVerifyFailures(t *testing.T) {
	f, err := Parse([]byte(sampleSuite))
	require.NoError(t, err)
	test, config := f.TestCases()[0], f.Values()

	err = test.Verify(config, httpwire.Response{Status: 500}, framework.NewContext())
	assert.EqualError(t, err, "expected status 201 but was 500")

	err = test.Verify(config, httpwire.Response{
		Status:  201,
		Headers: httpwire.NewHeaders(httpwire.Header{Name: "Content-Type", Value: "application/json"}),
	}, framework.NewContext())
	assert.EqualError(t, err, "expected header Location in the response, to store it as item")
}

func TestStoreWholeBody(t *testing.T) {
	f, err := Parse([]byte("tests: [{name: a, path: /token, store: {token: '@body'}}]"))
	require.NoError(t, err)
	ctx := framework.NewContext()
	require.NoError(t, f.TestCases()[0].Verify(nil, httpwire.Response{Status: 200, Body: "secret"}, ctx))
	token, _ := ctx.Retrieve("token")
	assert.Equal(t, "secret", token)
}

package endpoint

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/launchdarkly/http-selftest/client"
	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/httpwire"
	"github.com/launchdarkly/http-selftest/logging"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	support *logging.CaptureSupport
	mux     *http.ServeMux
}

func newApp(selftest func(*logging.CaptureSupport) http.Handler) *app {
	a := &app{support: logging.NewCaptureSupport(0), mux: http.NewServeMux()}
	a.mux.Handle("/greet", logging.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		a.support.Logger(r.Context(), logging.DefaultSourceName, nil).Printf("greeting %s", name)
		_, _ = w.Write([]byte("hello " + name))
	})))
	a.mux.Handle("/selftest", selftest(a.support))
	return a
}

func greetTest(check string) framework.TestCase {
	return framework.FuncTestCase{
		TestName: "greet",
		Prepare: func(config framework.Values, ctx *framework.Context) (httpwire.Request, error) {
			return httpwire.NewRequest("GET", "/greet?name="+config.Get("name")), nil
		},
		Check: func(config framework.Values, resp httpwire.Response, ctx *framework.Context) error {
			return framework.AssertBodyContains(resp, check)
		},
	}
}

func post(t *testing.T, target string, form url.Values, accept string) (*http.Response, string) {
	req, err := http.NewRequest("POST", target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHandlerRunsTestsAgainstOwnServer(t *testing.T) {
	a := newApp(func(s *logging.CaptureSupport) http.Handler {
		return &Handler{
			Tests:  []framework.TestCase{greetTest("hello alice")},
			Config: framework.Values{"name": "bob"},
			Runner: framework.NewRunner(&client.Transport{}, framework.Options{LogSupport: s}),
		}
	})
	httphelpers.WithServer(a.mux, func(server *httptest.Server) {
		resp, body := post(t, server.URL+"/selftest", url.Values{"p-name": {"alice"}}, "")
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		assert.Contains(t, body, "PASSED")
		assert.Contains(t, body, "1 passed, 0 failed")

		resp, body = post(t, server.URL+"/selftest", nil, "application/json")
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		lines := strings.Split(strings.TrimSpace(body), "\n")
		require.Len(t, lines, 2)
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
		assert.Equal(t, "FAILURE", record["result"])
		assert.Equal(t, `expected body to contain "hello alice"`, record["message"])

		logs := record["logs"].([]interface{})
		require.Len(t, logs, 1)
		events := logs[0].(map[string]interface{})["events"].([]interface{})
		require.Len(t, events, 1)
		event := events[0].(map[string]interface{})
		assert.Equal(t, "INFO", event["level"])
		assert.True(t, strings.HasSuffix(event["message"].(string), "INFO  greeting bob"), event["message"])
	})
}

func TestHandlerListsTests(t *testing.T) {
	h := &Handler{Tests: []framework.TestCase{greetTest("")}}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "greet\n", string(body))
	})
}

func TestHandlerRequiresCredentials(t *testing.T) {
	h := &Handler{Tests: []framework.TestCase{greetTest("")}, Credentials: "admin:secret"}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "Basic", resp.Header.Get("WWW-Authenticate"))

		req, _ := http.NewRequest("GET", server.URL, nil)
		req.SetBasicAuth("admin", "wrong")
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 401, resp.StatusCode)

		req.SetBasicAuth("admin", "secret")
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestHandlerReportsBusy(t *testing.T) {
	lock := &sync.Mutex{}
	lock.Lock()
	defer lock.Unlock()
	h := &Handler{
		Tests:   []framework.TestCase{greetTest("")},
		Runner:  framework.NewRunner(&client.Transport{}, framework.Options{Lock: lock}),
		BaseURL: func(*http.Request) string { return "http://localhost:1" },
	}
	httphelpers.WithServer(h, func(server *httptest.Server) {
		resp, body := post(t, server.URL, nil, "")
		assert.Equal(t, 503, resp.StatusCode)
		assert.Contains(t, body, "currently in use")
	})
}

func TestHandlerRejectsOtherMethods(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/", nil))
	assert.Equal(t, 405, rec.Code)
}

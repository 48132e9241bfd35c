package endpoint

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/launchdarkly/http-selftest/framework"
	"github.com/launchdarkly/http-selftest/report"
)

// ParamPrefix marks form values that override the configured Values: "p-user=bob" sets "user".
const ParamPrefix = "p-"

// Handler is an http.Handler that runs a self test. GET lists the test cases; POST runs them and
// writes the report, as JSON lines if the Accept header asks for application/json and as plain
// text otherwise.
type Handler struct {
	Tests  []framework.TestCase
	Config framework.Values
	Runner *framework.Runner
	// BaseURL returns the URL the test requests are sent to. By default it is
	// http://localhost:<port>/, with the port the incoming request was received on.
	BaseURL func(r *http.Request) string
	// Credentials, in the form "user:password", require HTTP basic authentication.
	Credentials string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		w.Header().Set("WWW-Authenticate", "Basic")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case "GET":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, tc := range h.Tests {
			fmt.Fprintln(w, tc.Name())
		}
	case "POST":
		h.run(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	config := make(framework.Values, len(h.Config))
	for k, v := range h.Config {
		config[k] = v
	}
	for k, vs := range r.PostForm {
		if strings.HasPrefix(k, ParamPrefix) && len(vs) > 0 {
			config[strings.TrimPrefix(k, ParamPrefix)] = vs[0]
		}
	}
	baseURL := h.baseURL(r)

	var sink framework.ReportSink
	var body strings.Builder
	contentType := "text/plain; charset=utf-8"
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		contentType = "application/json"
		sink = &report.JSONSink{Out: &body}
	} else {
		sink = &report.ConsoleSink{Out: &body, NoColor: true, BaseURL: baseURL, DebugOutputOnFailure: true}
	}

	_, err := h.Runner.RunAll(h.Tests, config, baseURL, sink)
	if errors.Is(err, framework.ErrAlreadyRunning) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(body.String()))
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.BaseURL != nil {
		return h.BaseURL(r)
	}
	port := "80"
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if tcp, ok := addr.(*net.TCPAddr); ok {
			port = strconv.Itoa(tcp.Port)
		}
	}
	return "http://localhost:" + port + "/"
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.Credentials == "" {
		return true
	}
	user, password, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(user+":"+password), []byte(h.Credentials)) == 1
}

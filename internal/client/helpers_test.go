package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/stretchr/testify/require"
)

// apiCall is one request received by fakeAPI.
type apiCall struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   *zsubs.Map
}

type responder func(call apiCall) (int, string)

// fakeAPI serves canned envelopes keyed by "METHOD path" and records every
// request it receives.
type fakeAPI struct {
	t *testing.T

	mutex  sync.Mutex
	calls  []apiCall
	routes map[string]responder
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	return &fakeAPI{t: t, routes: make(map[string]responder)}
}

func (f *fakeAPI) handle(method, path string, status int, body string) {
	f.handleFunc(method, path, func(apiCall) (int, string) { return status, body })
}

func (f *fakeAPI) handleFunc(method, path string, fn responder) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.routes[method+" "+path] = fn
}

func (f *fakeAPI) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	call := apiCall{
		Method: request.Method,
		Path:   strings.TrimPrefix(request.URL.Path, "/"),
		Query:  request.URL.Query(),
		Header: request.Header.Clone(),
	}

	data, err := io.ReadAll(request.Body)
	if err == nil && len(data) > 0 {
		body, parseErr := zsubs.ParseMap(data)
		if parseErr != nil {
			f.t.Errorf("request body is not a JSON object: %s", data)
		}

		call.Body = body
	}

	f.mutex.Lock()
	f.calls = append(f.calls, call)
	route, ok := f.routes[call.Method+" "+call.Path]
	f.mutex.Unlock()

	status, body := http.StatusNotFound, `{"code":1002,"message":"Resource does not exist."}`
	if ok {
		status, body = route(call)
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_, _ = writer.Write([]byte(body))
}

// count returns how many requests matched method and path; an empty method
// counts every request.
func (f *fakeAPI) count(method, path string) int {
	return len(f.callsTo(method, path))
}

func (f *fakeAPI) callsTo(method, path string) []apiCall {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var out []apiCall

	for _, call := range f.calls {
		if method == "" || (call.Method == method && call.Path == path) {
			out = append(out, call)
		}
	}

	return out
}

func (f *fakeAPI) lastCall() apiCall {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	require.NotEmpty(f.t, f.calls)

	return f.calls[len(f.calls)-1]
}

// newTestClient creates a client talking to api.
func newTestClient(t *testing.T, api *fakeAPI, configure ...func(*zsubs.Config)) *Client {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	config := &zsubs.Config{
		APIEndpoint:    server.URL,
		AccessToken:    "1000.test",
		OrganizationID: "10234695",
	}

	for _, fn := range configure {
		fn(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// recordingLogger keeps every entry for assertions.
type recordingLogger struct {
	mutex   sync.Mutex
	entries []logEntry
}

type logEntry struct {
	Level  string
	Msg    string
	Fields map[string]interface{}
}

func (l *recordingLogger) log(level, msg string, fields map[string]interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.entries = append(l.entries, logEntry{Level: level, Msg: msg, Fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var out []logEntry

	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

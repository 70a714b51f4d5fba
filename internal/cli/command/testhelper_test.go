package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"
)

// recordedRequest is a request seen by the mock server.
type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header
}

// mockServer creates a test HTTP server with custom handlers.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recordedRequest
}

// newMockServer creates a new mock server. It is closed with the test.
func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{
		handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		m.mu.Lock()
		m.requests = append(m.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Body:   body,
			Header: r.Header.Clone(),
		})
		handler, ok := m.handlers[r.Method+" "+r.URL.Path]
		m.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for "METHOD /path".
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[pattern] = handler
}

// reply registers a handler answering status with data as JSON.
func (m *mockServer) reply(pattern string, status int, data any) {
	m.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, status, data)
	})
}

// recorded returns the requests seen so far.
func (m *mockServer) recorded() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse writes a FastAPI-style error response.
func errorResponse(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]string{"detail": detail})
}

// runResult is the outcome of one app run.
type runResult struct {
	app    *cli.App
	stdout string
	stderr string
	err    error
}

// runtime returns the runtime the run created.
func (r runResult) runtime(t *testing.T) *Runtime {
	t.Helper()
	rt, ok := r.app.Metadata[runtimeKey].(*Runtime)
	if !ok {
		t.Fatal("runtime not initialized")
	}
	return rt
}

// runApp runs the bil app against server with a temporary config file.
func runApp(t *testing.T, server *mockServer, stdin string, args ...string) runResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := []string{"bil", "--config", filepath.Join(t.TempDir(), "cli.yaml")}
	if server != nil {
		full = append(full, "--server", server.URL)
	}
	full = append(full, args...)

	err := app.Run(full)
	return runResult{app: app, stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// sampleProject is a project with one pay group holding one payment.
const sampleProject = `{
	"id": 1,
	"name": "Trip",
	"paygroups": [
		{
			"id": 2,
			"name": "Food",
			"payments": [
				{"id": 3, "name": "Dinner", "date": "2024-05-01", "currency": "EUR",
				 "asset": 1050000000, "liability": 325000000}
			]
		},
		{"id": 4, "name": "Travel", "payments": []}
	]
}`

// rawJSON answers with body verbatim.
func rawJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

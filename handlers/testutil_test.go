package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bb3d/studio-api/handlers"
)

// --------------------------------------------------------------------------
// Handler factory
// --------------------------------------------------------------------------

// newHandler creates a Handler serving the default report.
func newHandler() *handlers.Handler {
	return handlers.New(handlers.DefaultReport())
}

// --------------------------------------------------------------------------
// HTTP test helpers
// --------------------------------------------------------------------------

// do calls fn with a synthetic request. A non-nil body is sent as JSON;
// headers are applied verbatim.
func do(t *testing.T, method, path string, body interface{}, headers map[string]string, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	var rb io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err, "marshal body")
		rb = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, path, rb)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	fn(w, r)
	return w
}

// decodeJSON unmarshals the response body into v and fails the test on error.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "decode response body: %s", w.Body.String())
}

// assertStatus fails the test if the recorded status code doesn't match want.
func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	assert.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

// failingWriter accepts headers but fails every body write, like a client
// that hung up mid-response.
type failingWriter struct {
	header http.Header
	status int
}

func newFailingWriter() *failingWriter {
	return &failingWriter{header: http.Header{}}
}

func (f *failingWriter) Header() http.Header       { return f.header }
func (f *failingWriter) WriteHeader(code int)      { f.status = code }
func (f *failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

// captureLogs routes the default slog logger into a buffer for the duration
// of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

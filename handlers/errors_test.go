package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bb3d/studio-api/handlers"
)

func TestNotFound(t *testing.T) {
	w := do(t, http.MethodGet, "/nope", nil, nil, handlers.NotFound)
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, handlers.ContentTypeJSON, w.Header().Get("Content-Type"))

	var result map[string]string
	decodeJSON(t, w, &result)
	assert.Equal(t, "not found: /nope", result["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	w := do(t, http.MethodPost, "/health", nil, nil, handlers.MethodNotAllowed)
	assertStatus(t, w, http.StatusMethodNotAllowed)

	var result map[string]string
	decodeJSON(t, w, &result)
	assert.Equal(t, "method not allowed: POST", result["error"])
}

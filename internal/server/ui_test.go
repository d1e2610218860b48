package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestSPAFallback(t *testing.T) {
	SetUI(fstest.MapFS{
		"index.html":    {Data: []byte("<html>bananimon</html>")},
		"assets/app.js": {Data: []byte("console.log('hi')")},
	})
	t.Cleanup(func() { SetUI(nil) })
	srv := testServer(t)

	for path, want := range map[string]string{
		"/":              "bananimon",
		"/home":          "bananimon",
		"/assets/app.js": "console.log",
	} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}

	req := httptest.NewRequest("GET", "/assets/missing.js", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "missing assets do not fall back")

	req = httptest.NewRequest("GET", "/assets/app.js", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
}

func TestSPAMissing(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

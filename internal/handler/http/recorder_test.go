package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		bytes  int
	}{
		{"nothing written", func(http.ResponseWriter) {}, http.StatusOK, 0},
		{"implicit 200", func(w http.ResponseWriter) { _, _ = w.Write([]byte("hello")) }, http.StatusOK, 5},
		{"explicit status", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("down"))
		}, http.StatusServiceUnavailable, 4},
		{"second WriteHeader ignored", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNotFound)
			w.WriteHeader(http.StatusOK)
		}, http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			sr := record(rec)
			tt.write(sr)
			assert.Equal(t, tt.status, sr.Status())
			assert.Equal(t, tt.bytes, sr.bytes)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRecord_ReusesRecorder(t *testing.T) {
	sr := record(httptest.NewRecorder())
	assert.Same(t, sr, record(sr))
	assert.NotNil(t, http.NewResponseController(sr))
}

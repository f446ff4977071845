package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		write   func(http.ResponseWriter)
		status  int
		message string
	}{
		{"json_error", func(w http.ResponseWriter) { WriteJSONError(w, http.StatusTeapot, "short and stout") }, http.StatusTeapot, "short and stout"},
		{"method_not_allowed", MethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
		{"bad_request", func(w http.ResponseWriter) { BadRequest(w, "missing recording") }, http.StatusBadRequest, "missing recording"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "database locked") }, http.StatusInternalServerError, "database locked"},
		{"not_found", func(w http.ResponseWriter) { NotFound(w, "no weights") }, http.StatusNotFound, "no weights"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.message, body["error"])
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string][]float64{"weights": {0.25, 0.75}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string][]float64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []float64{0.25, 0.75}, body["weights"])

	rec = httptest.NewRecorder()
	WriteJSONOK(rec, []string{"wave-01"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["wave-01"]`, rec.Body.String())
}

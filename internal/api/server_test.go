package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gesture.report/internal/db"
	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/testutil"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

func setupTestServer(t *testing.T) (*Server, *sqlite.WeightTableStore) {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "weights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	clock := timeutil.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := sqlite.NewWeightTableStore(database.DB, clock)
	return NewServer(store, "emotion"), store
}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestListRecordings(t *testing.T) {
	s, store := setupTestServer(t)
	ctx := context.Background()

	w := serve(t, s, http.MethodGet, "/api/recordings")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	assert.JSONEq(t, `{"project":"emotion","recordings":[]}`, w.Body.String())

	entry := mocap.WeightEntry{Values: []float64{0.5, 0.5}}
	require.NoError(t, store.SaveEntry(ctx, "emotion", "wave-02", entry, "stored"))
	require.NoError(t, store.SaveEntry(ctx, "emotion", "wave-01", entry, "stored"))
	require.NoError(t, store.SaveEntry(ctx, "other", "nod-01", entry, "stored"))

	w = serve(t, s, http.MethodGet, "/api/recordings")
	assert.JSONEq(t, `{"project":"emotion","recordings":["wave-01","wave-02"]}`, w.Body.String())

	w = serve(t, s, http.MethodGet, "/api/recordings?project=other")
	assert.JSONEq(t, `{"project":"other","recordings":["nod-01"]}`, w.Body.String())

	w = serve(t, s, http.MethodPost, "/api/recordings")
	testutil.AssertStatusCode(t, w.Code, http.StatusMethodNotAllowed)
}

func TestShowWeights(t *testing.T) {
	s, store := setupTestServer(t)
	require.NoError(t, store.SaveEntry(context.Background(), "emotion", "wave-01",
		mocap.WeightEntry{Markers: []string{"lhand", "rhand"}, Values: []float64{0.25, 0.75}}, "proportional"))

	testCases := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{
			name:   "found",
			path:   "/api/weights?recording=wave-01",
			status: http.StatusOK,
			body:   `{"project":"emotion","recording":"wave-01","markers":["lhand","rhand"],"weights":[0.25,0.75]}`,
		},
		{
			name:   "missing_param",
			path:   "/api/weights",
			status: http.StatusBadRequest,
			body:   `{"error":"missing 'recording' parameter"}`,
		},
		{
			name:   "unknown_recording",
			path:   "/api/weights?recording=wave-09",
			status: http.StatusNotFound,
			body:   `{"error":"no weights for emotion/wave-09"}`,
		},
		{
			name:   "other_project",
			path:   "/api/weights?recording=wave-01&project=other",
			status: http.StatusNotFound,
			body:   `{"error":"no weights for other/wave-01"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, s, http.MethodGet, tc.path)
			testutil.AssertStatusCode(t, w.Code, tc.status)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestRuns(t *testing.T) {
	s, store := setupTestServer(t)
	ctx := context.Background()

	w := serve(t, s, http.MethodGet, "/api/runs")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	assert.JSONEq(t, `[]`, w.Body.String())

	recs := []*mocap.Recording{
		testutil.ThreeMarkerRecording(t, "wave-01"),
		testutil.ThreeMarkerRecording(t, "wave-02"),
	}
	run, err := store.Calibrate(ctx, "emotion", "wave", recs, mocap.AllMarkers(), mocap.ProportionalMode())
	require.NoError(t, err)

	w = serve(t, s, http.MethodGet, "/api/runs")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	var runs []sqlite.CalibrationRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.RunID, runs[0].RunID)
	assert.Equal(t, []string{"wave-01", "wave-02"}, runs[0].Recordings)

	w = serve(t, s, http.MethodGet, "/api/runs/"+run.RunID)
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	var got sqlite.CalibrationRun
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "wave", got.Gesture)
	testutil.AssertSumsToOne(t, got.Weights)

	w = serve(t, s, http.MethodGet, "/api/runs/not-a-run")
	testutil.AssertStatusCode(t, w.Code, http.StatusNotFound)
}

func TestLoggingMiddleware(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestStatusCodeColor(t *testing.T) {
	assert.Contains(t, statusCodeColor(200), colorBoldGreen)
	assert.Contains(t, statusCodeColor(304), colorYellow)
	assert.Contains(t, statusCodeColor(404), colorBoldRed)
	assert.Equal(t, "100", statusCodeColor(100))
}

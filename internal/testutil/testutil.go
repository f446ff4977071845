// Package testutil provides shared test utilities and fixtures.
//
// This package centralises recording fixtures and assertions used by the
// packages that sit on top of the mocap engine.
package testutil

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/gesture.report/internal/mocap"
)

// FixtureMarkers are the marker names of ThreeMarkerRecording.
var FixtureMarkers = []string{"head", "lhand", "rhand"}

// FixturePositions returns a fresh 3x4x2 tensor: "head" stands still,
// "lhand" walks a path of length 10 and "rhand" oscillates over 21.
func FixturePositions() mocap.Positions {
	return mocap.Positions{
		{{1, 1}, {1, 1}, {1, 1}, {1, 1}},
		{{0, 0}, {3, 4}, {6, 8}, {6, 8}},
		{{0, 0}, {0, 7}, {0, 0}, {0, 7}},
	}
}

// NewRecording builds a recording whose raw and normalised tensors are both
// positions, failing the test on error.
func NewRecording(t testing.TB, name string, markers []string, positions mocap.Positions, fps int) *mocap.Recording {
	t.Helper()
	rec, err := mocap.NewRecording(name, markers, positions, positions, fps)
	if err != nil {
		t.Fatalf("NewRecording(%s): %v", name, err)
	}
	return rec
}

// ThreeMarkerRecording returns the standard fixture at 30 fps.
func ThreeMarkerRecording(t testing.TB, name string) *mocap.Recording {
	t.Helper()
	return NewRecording(t, name, FixtureMarkers, FixturePositions(), 30)
}

// AssertSumsToOne checks that a weight vector is normalised.
func AssertSumsToOne(t testing.TB, weights []float64) {
	t.Helper()
	if sum := floats.Sum(weights); math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights %v sum to %g, want 1", weights, sum)
	}
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

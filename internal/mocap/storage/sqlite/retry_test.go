package sqlite

import (
	"errors"
	"testing"
)

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"database is locked", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"SQLITE_BUSY", errors.New("SQLITE_BUSY"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSQLiteBusy(tt.err); got != tt.expected {
				t.Errorf("isSQLiteBusy(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("success after retry", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked (5) (SQLITE_BUSY)")
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want nil, 3", err, calls)
		}
	})

	t.Run("non-busy error returns immediately", func(t *testing.T) {
		calls := 0
		want := errors.New("constraint failed")
		err := retryOnBusy(func() error {
			calls++
			return want
		})
		if !errors.Is(err, want) || calls != 1 {
			t.Errorf("err = %v, calls = %d; want %v, 1", err, calls, want)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		if err == nil || calls != busyRetries {
			t.Errorf("err = %v, calls = %d; want error, %d", err, calls, busyRetries)
		}
	})
}

package sqlite

import (
	"strings"
	"time"
)

const (
	busyRetries = 5
	busyBackoff = 10 * time.Millisecond
)

// isSQLiteBusy reports whether err is a transient lock error.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with doubling backoff while SQLite reports
// the database as locked.
func retryOnBusy(fn func() error) error {
	backoff := busyBackoff
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		if err = fn(); !isSQLiteBusy(err) {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

package testutil

import (
	"log"
	"testing"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func testLogger(t *testing.T) *log.Logger {
	return log.New(testWriter{t: t}, "[test] ", log.LstdFlags)
}

// Logger returns a *log.Logger that writes through t.Log.
func Logger(t *testing.T) *log.Logger {
	return testLogger(t)
}

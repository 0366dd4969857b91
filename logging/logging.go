// Package logging wraps the shared structured logger and the
// rate-limited warning gates used for numeric diagnostics. Convergence
// and degeneracy warnings can occur millions of times on a bad mesh;
// each warning key is printed a bounded number of times and counted
// afterwards.
package logging

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					Prefix:          "fieldmap",
				})
				l.SetLevel(log.InfoLevel)
				singleton = &logger{l}
			})
	}
	return singleton
}

// SetLevel adjusts the global log level ("debug", "info", "warn",
// "error"); unknown values are ignored.
func SetLevel(level string) {
	if lv, err := log.ParseLevel(level); err == nil {
		getLogger().Logger.SetLevel(lv)
	}
}

func Debugf(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func Infof(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func Warnf(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func Errorf(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

// maxPerKey is how many times a rate-limited warning is actually
// printed before going silent.
const maxPerKey = 10

var (
	limitMu sync.Mutex
	counts  = make(map[string]uint64)
)

// Occasional increments the occurrence count for key and reports
// whether this occurrence should still be printed. The final printed
// occurrence announces the suppression.
func Occasional(key string) bool {
	limitMu.Lock()
	defer limitMu.Unlock()
	counts[key]++
	n := counts[key]
	if n == maxPerKey {
		getLogger().Warnf("%s: further warnings suppressed", key)
	}
	return n < maxPerKey
}

// Count returns the number of occurrences recorded for key.
func Count(key string) uint64 {
	limitMu.Lock()
	defer limitMu.Unlock()
	return counts[key]
}

// ResetCounts clears the warning counters. Intended for tests.
func ResetCounts() {
	limitMu.Lock()
	defer limitMu.Unlock()
	counts = make(map[string]uint64)
}

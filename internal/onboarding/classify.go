// Package onboarding implements the wizard that takes a freshly connected
// account from "no analytics yet" to a ready dashboard: the state machine,
// the sync poller, and the presentation timers that pace it.
package onboarding

import "strings"

// ErrorClass is the routing decision for a backend error string.
type ErrorClass int

const (
	// ErrorUnclassified means no automatic transition; the user stays on the
	// current step and may retry.
	ErrorUnclassified ErrorClass = iota
	// ErrorNoSource means the source system is not connected.
	ErrorNoSource
	// ErrorSyncPending means the data import has not produced enough data yet.
	ErrorSyncPending
)

// The classification vocabulary is owned by this package; the backend's error
// strings are matched case-insensitively against it.
var (
	noSourceMarkers    = []string{"no active source", "not connected", "no source", "connect your source"}
	syncPendingMarkers = []string{"sync", "pending"}
)

// Classify routes a backend error string to an error class. No-source markers
// win over sync markers when both appear.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorUnclassified
	}
	msg := strings.ToLower(err.Error())

	for _, marker := range noSourceMarkers {
		if strings.Contains(msg, marker) {
			return ErrorNoSource
		}
	}
	for _, marker := range syncPendingMarkers {
		if strings.Contains(msg, marker) {
			return ErrorSyncPending
		}
	}
	return ErrorUnclassified
}

// Package projection derives normalized execution status from raw task
// context documents produced by workflow runs.
package projection

import (
	"fmt"
	"strings"
)

// Status represents the overall state of a workflow execution.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusInitializing Status = "initializing"
	StatusRunning      Status = "running"
	StatusPaused       Status = "paused"
	StatusStopping     Status = "stopping"
	StatusStopped      Status = "stopped"
	StatusCompleted    Status = "completed"
	StatusError        Status = "error"
)

// statusSynonyms maps legacy status spellings that still occur in live task
// contexts onto the current vocabulary. Both generations must be accepted
// permanently, not as a migration shim.
var statusSynonyms = map[string]Status{
	"prepared":    StatusInitializing,
	"queued":      StatusIdle,
	"in_progress": StatusRunning,
	"in-progress": StatusRunning,
	"failed":      StatusError,
	"failure":     StatusError,
	"done":        StatusCompleted,
	"complete":    StatusCompleted,
	"finished":    StatusCompleted,
}

// AllStatuses returns all valid execution statuses.
func AllStatuses() []Status {
	return []Status{
		StatusIdle,
		StatusInitializing,
		StatusRunning,
		StatusPaused,
		StatusStopping,
		StatusStopped,
		StatusCompleted,
		StatusError,
	}
}

// IsValid returns true if the status is part of the current vocabulary.
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusInitializing, StatusRunning, StatusPaused,
		StatusStopping, StatusStopped, StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further updates are expected for the execution.
func (s Status) IsTerminal() bool {
	return s == StatusStopped || s == StatusCompleted || s == StatusError
}

// DisplayName returns a human-readable display name for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusInitializing:
		return "Initializing"
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopping:
		return "Stopping"
	case StatusStopped:
		return "Stopped"
	case StatusCompleted:
		return "Completed"
	case StatusError:
		return "Error"
	default:
		return string(s)
	}
}

// NormalizeStatus maps a raw status string onto the vocabulary, resolving
// legacy synonyms. The second return is false when the string is not a
// recognizable status.
func NormalizeStatus(raw string) (Status, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return "", false
	}
	if mapped, ok := statusSynonyms[token]; ok {
		return mapped, true
	}
	status := Status(token)
	if !status.IsValid() {
		return "", false
	}
	return status, true
}

// ParseStatus parses a string into a Status, accepting legacy synonyms.
func ParseStatus(s string) (Status, error) {
	status, ok := NormalizeStatus(s)
	if !ok {
		return "", fmt.Errorf("invalid execution status: %s", s)
	}
	return status, nil
}

// MustParseStatus parses a string into a Status, panicking on error.
func MustParseStatus(s string) Status {
	status, err := ParseStatus(s)
	if err != nil {
		panic(err)
	}
	return status
}

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/beaconhq/beacon/pkg/domain/events"
)

// EventsFile is the envelope history log, one JSON envelope per line.
const EventsFile = "events.jsonl"

// EventLog persists published status envelopes to a JSON Lines file. It
// gives executions a replayable history next to the latest-value store.
type EventLog struct {
	mu       sync.RWMutex
	path     string
	basePath string
}

// NewEventLog creates a file-based envelope log under root/.beacon.
// The directory is created on first write, not at construction time,
// to avoid interfering with workspace initialization checks.
func NewEventLog(root string) *EventLog {
	basePath := filepath.Join(root, BeaconDir)
	return &EventLog{
		path:     filepath.Join(basePath, EventsFile),
		basePath: basePath,
	}
}

// Append writes the envelope as a new line at the end of the log.
func (l *EventLog) Append(env events.Envelope) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.basePath, 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// LoadAll returns all logged envelopes in append order. A missing log file
// is an empty history, not an error.
func (l *EventLog) LoadAll() ([]events.Envelope, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []events.Envelope
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env events.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			// A torn tail line from an interrupted write is skipped rather
			// than poisoning the whole history.
			continue
		}
		out = append(out, env)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events file: %w", err)
	}
	return out, nil
}

// LoadByExecution returns logged envelopes for one execution, in append order.
func (l *EventLog) LoadByExecution(executionID string) ([]events.Envelope, error) {
	all, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []events.Envelope
	for _, env := range all {
		if env.Payload != nil && env.Payload.ExecutionID == executionID {
			out = append(out, env)
		}
	}
	return out, nil
}

// LoadSince returns envelopes stamped after the given time.
func (l *EventLog) LoadSince(since time.Time) ([]events.Envelope, error) {
	all, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	var out []events.Envelope
	for _, env := range all {
		if env.Timestamp.After(since) {
			out = append(out, env)
		}
	}
	return out, nil
}

// Count returns the number of logged envelopes.
func (l *EventLog) Count() (int, error) {
	all, err := l.LoadAll()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

const BeaconDir = ".beacon"
const ContextsDir = "contexts"

var executionFilePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ContextRepository persists raw task context documents per execution under
// root/.beacon/contexts. Documents are stored verbatim; normalization happens
// only at projection time.
type ContextRepository struct {
	root        string
	retryConfig retry.Config
}

// NewContextRepository creates a repository rooted at the given workspace.
func NewContextRepository(root string) *ContextRepository {
	return &ContextRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *ContextRepository) Root() string {
	return r.root
}

// Initialize creates the .beacon directory tree.
func (r *ContextRepository) Initialize() error {
	path := filepath.Join(r.root, BeaconDir, ContextsDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", BeaconDir, err)
	}
	return nil
}

// IsInitialized reports whether the workspace has a .beacon directory.
func (r *ContextRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, BeaconDir))
	return err == nil
}

// resolvePath maps an execution id to its context file, rejecting ids that
// could escape the contexts directory.
func (r *ContextRepository) resolvePath(executionID string) (string, error) {
	if executionID == "" || !executionFilePattern.MatchString(executionID) {
		return "", fmt.Errorf("invalid execution id: %q", executionID)
	}

	baseDir := filepath.Join(r.root, BeaconDir, ContextsDir)
	fullPath := filepath.Clean(filepath.Join(baseDir, executionID+".json"))
	if !strings.HasPrefix(fullPath, baseDir) || filepath.Dir(fullPath) != baseDir {
		return "", fmt.Errorf("invalid context path for execution: %q", executionID)
	}
	return fullPath, nil
}

// SaveContext overwrites the stored task context for an execution.
func (r *ContextRepository) SaveContext(executionID string, doc map[string]any) error {
	path, err := r.resolvePath(executionID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task context: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadContext reads the stored task context for an execution. Reads are
// retried briefly to ride out concurrent writers.
func (r *ContextRepository) LoadContext(executionID string) (map[string]any, error) {
	retryer := retry.New[map[string]any](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (map[string]any, error) {
		path, err := r.resolvePath(executionID)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via resolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read task context: %w", err)
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse task context: %w", err)
		}
		return doc, nil
	})
}

// ListContexts returns the execution ids with a stored context, sorted.
func (r *ContextRepository) ListContexts() ([]string, error) {
	baseDir := filepath.Join(r.root, BeaconDir, ContextsDir)
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

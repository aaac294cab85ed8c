package projection

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	executionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	projectIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_/-]+$`)
	taskIDPattern      = regexp.MustCompile(`^\d+(\.\d+)*$`)
)

// maxNonTerminalProgress caps progress for every status except completed, so
// that progress reaches 100 exactly when the execution is complete.
const maxNonTerminalProgress = 99.9

// StatusProjection is the normalized summary record derived from a task
// context. It is constructed fresh on every projection call and never mutated
// afterward; stores holding the latest projection per execution overwrite it
// wholesale.
type StatusProjection struct {
	ExecutionID string             `json:"execution_id"`
	ProjectID   string             `json:"project_id"`
	CustomerID  string             `json:"customer_id,omitempty"`
	Status      Status             `json:"status"`
	Progress    float64            `json:"progress"`
	CurrentTask string             `json:"current_task,omitempty"`
	Totals      TaskTotals         `json:"totals"`
	Branch      string             `json:"branch,omitempty"`
	Artifacts   ExecutionArtifacts `json:"artifacts"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	UpdatedAt   *time.Time         `json:"updated_at,omitempty"`
}

// normalize restores the cross-field invariants by correcting the offending
// field rather than failing. The engine exists to tolerate upstream
// inconsistency: an idle execution with a stale current_task loses the task,
// a running execution without one gets the root task id, and progress is
// forced to the values its status requires.
func (p *StatusProjection) normalize() {
	if p.Totals.Completed < 0 {
		p.Totals.Completed = 0
	}
	if p.Totals.Total < 0 {
		p.Totals.Total = 0
	}
	if p.Totals.Completed > p.Totals.Total {
		p.Totals.Completed = p.Totals.Total
	}

	if p.CurrentTask != "" && !taskIDPattern.MatchString(p.CurrentTask) {
		p.CurrentTask = ""
	}

	switch p.Status {
	case StatusIdle:
		p.Progress = 0.0
		p.CurrentTask = ""
	case StatusRunning:
		if p.CurrentTask == "" {
			p.CurrentTask = "0"
		}
	case StatusCompleted:
		p.Progress = 100.0
	}

	if p.Status != StatusCompleted {
		if p.Progress > maxNonTerminalProgress {
			p.Progress = maxNonTerminalProgress
		}
		if p.Progress < 0 {
			p.Progress = 0.0
		}
	}
}

// Validate reports a projection that violates its own contract. normalize
// restores every invariant before a projection leaves the builder, so a
// failure here is an internal logic error, not a user-facing condition.
func (p *StatusProjection) Validate() error {
	if p.ExecutionID == "" || !executionIDPattern.MatchString(p.ExecutionID) {
		return fmt.Errorf("invalid execution id: %q", p.ExecutionID)
	}
	if p.ProjectID != "" {
		if !projectIDPattern.MatchString(p.ProjectID) || strings.Count(p.ProjectID, "/") > 1 {
			return fmt.Errorf("invalid project id: %q", p.ProjectID)
		}
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", p.Status)
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("progress out of range: %f", p.Progress)
	}
	if p.CurrentTask != "" && !taskIDPattern.MatchString(p.CurrentTask) {
		return fmt.Errorf("invalid current task id: %q", p.CurrentTask)
	}
	if p.Totals.Completed > p.Totals.Total {
		return fmt.Errorf("totals inconsistent: completed %d > total %d", p.Totals.Completed, p.Totals.Total)
	}
	if p.Status == StatusIdle && (p.Progress != 0 || p.CurrentTask != "") {
		return fmt.Errorf("idle projection carries progress or current task")
	}
	if p.Status == StatusRunning && p.CurrentTask == "" {
		return fmt.Errorf("running projection without current task")
	}
	if p.Status == StatusCompleted && p.Progress != 100.0 {
		return fmt.Errorf("completed projection with progress %f", p.Progress)
	}
	if p.Branch != "" && SanitizeBranch(p.Branch) == "" {
		return fmt.Errorf("invalid branch name: %q", p.Branch)
	}
	return nil
}

// splitCustomerID derives the customer portion of a project id: the substring
// before the first "/", or "" when the id has no customer prefix.
func splitCustomerID(projectID string) string {
	if idx := strings.Index(projectID, "/"); idx > 0 {
		return projectID[:idx]
	}
	return ""
}

// parseTimestamp parses an ISO-8601 timestamp from metadata, degrading to nil
// on any malformation.
func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

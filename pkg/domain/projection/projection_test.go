package projection

import (
	"encoding/json"
	"testing"
)

func TestSanitizeBranch(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"main", "main"},
		{"feat/projector", "feat/projector"},
		{"release-1.2.3", "release-1.2.3"},
		{"", ""},
		{"-leading-dash", ""},
		{"has space", ""},
		{"inject;rm", ""},
		{"tab\tname", ""},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			if got := SanitizeBranch(tt.branch); got != tt.want {
				t.Errorf("SanitizeBranch(%q) = %q, want %q", tt.branch, got, tt.want)
			}
		})
	}
}

func TestSplitCustomerID(t *testing.T) {
	tests := []struct {
		projectID string
		want      string
	}{
		{"cust/proj", "cust"},
		{"solo", ""},
		{"", ""},
		{"/leading", ""},
		{"a/b", "a"},
	}

	for _, tt := range tests {
		if got := splitCustomerID(tt.projectID); got != tt.want {
			t.Errorf("splitCustomerID(%q) = %q, want %q", tt.projectID, got, tt.want)
		}
	}
}

func TestStatusProjection_NormalizeCorrections(t *testing.T) {
	tests := []struct {
		name   string
		in     StatusProjection
		verify func(t *testing.T, p StatusProjection)
	}{
		{
			name: "idle clears progress and task",
			in:   StatusProjection{ExecutionID: "e", Status: StatusIdle, Progress: 40, CurrentTask: "1.2"},
			verify: func(t *testing.T, p StatusProjection) {
				if p.Progress != 0 || p.CurrentTask != "" {
					t.Errorf("idle not cleared: %+v", p)
				}
			},
		},
		{
			name: "completed forces full progress",
			in:   StatusProjection{ExecutionID: "e", Status: StatusCompleted, Progress: 80},
			verify: func(t *testing.T, p StatusProjection) {
				if p.Progress != 100.0 {
					t.Errorf("progress = %f", p.Progress)
				}
			},
		},
		{
			name: "running without task gets root task",
			in:   StatusProjection{ExecutionID: "e", Status: StatusRunning, Progress: 10},
			verify: func(t *testing.T, p StatusProjection) {
				if p.CurrentTask != "0" {
					t.Errorf("current task = %q", p.CurrentTask)
				}
			},
		},
		{
			name: "completed count clamped to total",
			in:   StatusProjection{ExecutionID: "e", Status: StatusPaused, Totals: TaskTotals{Completed: 5, Total: 3}},
			verify: func(t *testing.T, p StatusProjection) {
				if p.Totals.Completed != 3 {
					t.Errorf("totals = %+v", p.Totals)
				}
			},
		},
		{
			name: "non-completed progress capped below 100",
			in:   StatusProjection{ExecutionID: "e", Status: StatusError, Progress: 100},
			verify: func(t *testing.T, p StatusProjection) {
				if p.Progress != maxNonTerminalProgress {
					t.Errorf("progress = %f", p.Progress)
				}
			},
		},
		{
			name: "malformed task id dropped",
			in:   StatusProjection{ExecutionID: "e", Status: StatusPaused, CurrentTask: "abc"},
			verify: func(t *testing.T, p StatusProjection) {
				if p.CurrentTask != "" {
					t.Errorf("current task = %q", p.CurrentTask)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.normalize()
			tt.verify(t, p)
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() after normalize: %v", err)
			}
		})
	}
}

func TestStatusProjection_ValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		p    StatusProjection
	}{
		{"empty execution id", StatusProjection{Status: StatusIdle}},
		{"bad execution id", StatusProjection{ExecutionID: "e 1", Status: StatusIdle}},
		{"bad project id", StatusProjection{ExecutionID: "e", ProjectID: "a/b/c", Status: StatusIdle}},
		{"bad status", StatusProjection{ExecutionID: "e", Status: Status("wat")}},
		{"negative progress", StatusProjection{ExecutionID: "e", Status: StatusPaused, Progress: -1}},
		{"running without task", StatusProjection{ExecutionID: "e", Status: StatusRunning, Progress: 10}},
		{"idle with progress", StatusProjection{ExecutionID: "e", Status: StatusIdle, Progress: 5}},
		{"completed without full progress", StatusProjection{ExecutionID: "e", Status: StatusCompleted, Progress: 99}},
		{"inverted totals", StatusProjection{ExecutionID: "e", Status: StatusPaused, Totals: TaskTotals{Completed: 2, Total: 1}}},
		{"bad branch", StatusProjection{ExecutionID: "e", Status: StatusPaused, Branch: "bad branch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestStatusProjection_JSONShape(t *testing.T) {
	p, err := FromTaskContext(map[string]any{
		"metadata": map[string]any{"task_id": "1.1", "status": "running", "started_at": "2026-01-02T03:04:05Z"},
		"nodes":    map[string]any{"a": map[string]any{"status": "completed"}, "b": map[string]any{"status": "running"}},
	}, "exec-9", "cust/proj")
	if err != nil {
		t.Fatalf("FromTaskContext() error: %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out["execution_id"] != "exec-9" || out["project_id"] != "cust/proj" || out["customer_id"] != "cust" {
		t.Errorf("identity fields = %v", out)
	}
	if out["status"] != "running" || out["current_task"] != "1.1" {
		t.Errorf("status fields = %v", out)
	}
	totals, ok := out["totals"].(map[string]any)
	if !ok || totals["completed"] != float64(1) || totals["total"] != float64(2) {
		t.Errorf("totals = %v", out["totals"])
	}
	if out["started_at"] != "2026-01-02T03:04:05Z" {
		t.Errorf("started_at = %v", out["started_at"])
	}
}

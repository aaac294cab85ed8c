package projection

import "testing"

func TestExtractNodeStatus(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Status
		ok    bool
	}{
		{
			name:  "direct status key",
			value: map[string]any{"status": "completed"},
			want:  StatusCompleted,
			ok:    true,
		},
		{
			name:  "direct status with legacy synonym",
			value: map[string]any{"status": "in_progress"},
			want:  StatusRunning,
			ok:    true,
		},
		{
			name:  "nested event_data status",
			value: map[string]any{"event_data": map[string]any{"status": "error"}},
			want:  StatusError,
			ok:    true,
		},
		{
			name: "direct key shadows nested",
			value: map[string]any{
				"status":     "running",
				"event_data": map[string]any{"status": "error"},
			},
			want: StatusRunning,
			ok:   true,
		},
		{
			name:  "direct key present but invalid does not fall through",
			value: map[string]any{"status": 42, "event_data": map[string]any{"status": "completed"}},
			ok:    false,
		},
		{name: "plain string value", value: "completed", ok: false},
		{name: "number value", value: float64(7), ok: false},
		{name: "nil value", value: nil, ok: false},
		{name: "list value", value: []any{"completed"}, ok: false},
		{name: "empty map", value: map[string]any{}, ok: false},
		{name: "map without status", value: map[string]any{"output": "x"}, ok: false},
		{name: "empty status string", value: map[string]any{"status": ""}, ok: false},
		{name: "unrecognized status string", value: map[string]any{"status": "exploded"}, ok: false},
		{name: "non-map event_data", value: map[string]any{"event_data": "oops"}, ok: false},
		{
			name:  "event_data without status",
			value: map[string]any{"event_data": map[string]any{"detail": 1}},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNodeStatus(tt.value)
			if ok != tt.ok {
				t.Fatalf("ExtractNodeStatus() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ExtractNodeStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

package projection

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		container any
		keys      []string
		def       any
		want      any
	}{
		{
			name:      "first candidate wins",
			container: map[string]any{"task_id": "1.2", "taskId": "9.9"},
			keys:      []string{"task_id", "taskId"},
			want:      "1.2",
		},
		{
			name:      "falls through to second candidate",
			container: map[string]any{"taskId": "1.2"},
			keys:      []string{"task_id", "taskId"},
			want:      "1.2",
		},
		{
			name:      "missing everywhere returns default",
			container: map[string]any{"other": 1},
			keys:      []string{"task_id", "taskId"},
			def:       "fallback",
			want:      "fallback",
		},
		{
			name:      "non-map container returns default",
			container: "garbage",
			keys:      []string{"task_id"},
			def:       42,
			want:      42,
		},
		{
			name:      "nil container returns default",
			container: nil,
			keys:      []string{"task_id"},
			want:      nil,
		},
		{
			name:      "empty string counts as not provided",
			container: map[string]any{"status": ""},
			keys:      []string{"status"},
			def:       "dflt",
			want:      "dflt",
		},
		{
			name:      "non-string values pass through",
			container: map[string]any{"count": float64(3)},
			keys:      []string{"count"},
			want:      float64(3),
		},
		{
			name:      "nil value passes through",
			container: map[string]any{"status": nil},
			keys:      []string{"status"},
			def:       "dflt",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.container, tt.keys, tt.def)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveString(t *testing.T) {
	m := map[string]any{"branch": "feat/projector", "count": float64(3)}
	if got := ResolveString(m, "branch"); got != "feat/projector" {
		t.Errorf("ResolveString(branch) = %q", got)
	}
	if got := ResolveString(m, "count"); got != "" {
		t.Errorf("ResolveString(non-string) = %q, want empty", got)
	}
	if got := ResolveString("garbage", "branch"); got != "" {
		t.Errorf("ResolveString(non-map) = %q, want empty", got)
	}
}

func TestResolveStringSlice(t *testing.T) {
	tests := []struct {
		name      string
		container any
		keys      []string
		want      []string
	}{
		{
			name:      "json decoded list",
			container: map[string]any{"files_modified": []any{"a.go", "b.go"}},
			keys:      []string{"files_modified", "filesModified"},
			want:      []string{"a.go", "b.go"},
		},
		{
			name:      "camelCase fallback",
			container: map[string]any{"filesModified": []any{"c.go"}},
			keys:      []string{"files_modified", "filesModified"},
			want:      []string{"c.go"},
		},
		{
			name:      "native string slice",
			container: map[string]any{"logs": []string{"line"}},
			keys:      []string{"logs"},
			want:      []string{"line"},
		},
		{
			name:      "non-string elements skipped",
			container: map[string]any{"logs": []any{"ok", float64(1), nil}},
			keys:      []string{"logs"},
			want:      []string{"ok"},
		},
		{
			name:      "mistyped field degrades to nil",
			container: map[string]any{"logs": "not-a-list"},
			keys:      []string{"logs"},
			want:      nil,
		},
		{
			name:      "missing field degrades to nil",
			container: map[string]any{},
			keys:      []string{"logs"},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStringSlice(tt.container, tt.keys...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveStringSlice() = %v, want %v", got, tt.want)
			}
		})
	}
}

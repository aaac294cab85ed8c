package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/beaconhq/beacon/pkg/domain/projection"
)

var errFirstHandler = errors.New("handler failure must not block others")

func mustProject(t *testing.T, ctx map[string]any) *projection.StatusProjection {
	t.Helper()
	p, err := projection.FromTaskContext(ctx, "exec-1", "cust/proj")
	if err != nil {
		t.Fatalf("FromTaskContext() error: %v", err)
	}
	return p
}

func TestNewEnvelope_TypeFollowsStatus(t *testing.T) {
	tests := []struct {
		name     string
		ctx      map[string]any
		wantType string
	}{
		{
			name: "running update",
			ctx: map[string]any{
				"metadata": map[string]any{"status": "running", "task_id": "1"},
			},
			wantType: TypeExecutionUpdate,
		},
		{
			name: "completion",
			ctx: map[string]any{
				"nodes": map[string]any{"a": map[string]any{"status": "completed"}},
			},
			wantType: TypeCompletion,
		},
		{
			name: "error",
			ctx: map[string]any{
				"nodes": map[string]any{"a": map[string]any{"status": "error"}},
			},
			wantType: TypeError,
		},
		{
			name:     "idle update",
			ctx:      map[string]any{},
			wantType: TypeExecutionUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvelope(mustProject(t, tt.ctx))
			if env.Type != tt.wantType {
				t.Errorf("type = %q, want %q", env.Type, tt.wantType)
			}
			if env.ID == "" {
				t.Error("envelope id not set")
			}
			if env.ProjectID != "cust/proj" {
				t.Errorf("projectId = %q", env.ProjectID)
			}
			if env.Timestamp.IsZero() {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestEnvelope_JSONShape(t *testing.T) {
	env := NewEnvelope(mustProject(t, map[string]any{
		"nodes": map[string]any{"a": map[string]any{"status": "completed"}},
	}))

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"type", "ts", "projectId", "payload"} {
		if _, ok := out[key]; !ok {
			t.Errorf("envelope JSON missing %q", key)
		}
	}
	payload, ok := out["payload"].(map[string]any)
	if !ok || payload["status"] != "completed" {
		t.Errorf("payload = %v", out["payload"])
	}
}

func TestInMemoryPublisher(t *testing.T) {
	pub := NewInMemoryPublisher()

	var got []string
	pub.Subscribe(func(env Envelope) error {
		got = append(got, "first:"+env.Type)
		return errFirstHandler
	})
	pub.Subscribe(func(env Envelope) error {
		got = append(got, "second:"+env.Type)
		return nil
	})

	env := NewEnvelope(mustProject(t, map[string]any{}))
	err := pub.Publish(env)
	if err == nil {
		t.Fatal("Publish() should surface the failing handler's error")
	}
	if !errors.Is(err, errFirstHandler) {
		t.Errorf("Publish() error = %v, want wrapped %v", err, errFirstHandler)
	}

	if len(got) != 2 || got[0] != "first:execution-update" || got[1] != "second:execution-update" {
		t.Errorf("deliveries = %v", got)
	}
}

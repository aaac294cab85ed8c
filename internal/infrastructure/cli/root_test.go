package cli

import (
	"testing"
)

func TestExecuteHelp(t *testing.T) {
	_, cleanup := withTempDir(t)
	defer cleanup()

	out := captureStdout(t, func() {
		if err := runCommand("--help"); err != nil {
			t.Errorf("Execute failed: %v", err)
		}
	})
	if out == "" {
		t.Error("expected help output")
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/pkg/domain/projection"
)

// Flag variables for status command
var (
	statusExecutionID string
	statusProjectID   string
	statusJSON        bool
)

var statusCmd = &cobra.Command{
	Use:   "status <context.json>",
	Short: "Project a task context document into a status summary",
	Long: `Project a task context document into a normalized status summary.

The document is read from the given file, projected, and printed. Malformed
metadata or node entries degrade to defaults instead of failing; only a
document that is not a JSON object is rejected.

Examples:
  beacon status .beacon/contexts/exec-42.json
  beacon status context.json --execution-id exec-42 --project acme/exec-42
  beacon status context.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatusCmd,
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read context: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse context: %w", err)
	}

	executionID := statusExecutionID
	if executionID == "" {
		executionID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	p, err := projection.FromTaskContext(doc, executionID, statusProjectID)
	if err != nil {
		return fmt.Errorf("project context: %w", err)
	}

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return outputStatusText(p)
}

func outputStatusText(p *projection.StatusProjection) error {
	fmt.Printf("Execution: %s\n", p.ExecutionID)
	if p.ProjectID != "" {
		fmt.Printf("Project:   %s\n", p.ProjectID)
	}
	fmt.Printf("Status:    %s\n", p.Status.DisplayName())
	fmt.Printf("Progress:  %.1f%% (%d/%d tasks completed)\n", p.Progress, p.Totals.Completed, p.Totals.Total)

	if p.CurrentTask != "" {
		fmt.Printf("Current task: %s\n", p.CurrentTask)
	}
	if p.Branch != "" {
		fmt.Printf("Branch:    %s\n", p.Branch)
	}
	if p.Artifacts.RepoPath != "" {
		fmt.Printf("Repo:      %s\n", p.Artifacts.RepoPath)
	}
	if len(p.Artifacts.FilesModified) > 0 {
		fmt.Println("\nFiles modified:")
		for _, f := range p.Artifacts.FilesModified {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(p.Artifacts.Logs) > 0 {
		fmt.Printf("\nLogs: %d entries\n", len(p.Artifacts.Logs))
	}
	if p.UpdatedAt != nil {
		fmt.Printf("\nLast update: %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func init() {
	statusCmd.Flags().StringVar(&statusExecutionID, "execution-id", "",
		"Execution identifier (defaults to the file name without extension)")
	statusCmd.Flags().StringVar(&statusProjectID, "project", "",
		"Project identifier, optionally customer-scoped (customer/project)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false,
		"Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}

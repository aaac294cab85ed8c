package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/infrastructure/config"
	"github.com/beaconhq/beacon/internal/infrastructure/watch"
)

var (
	watchExecutionID string
	watchProjectID   string
)

var watchCmd = &cobra.Command{
	Use:   "watch <context.json>",
	Short: "Watch a task context file and print status updates on change",
	Long: `Watch a task context file and re-project it whenever it changes.

Rapid successive writes are coalesced; the debounce window comes from
beacon.yaml (500ms by default).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		cwd, _ := os.Getwd()
		cfg, err := config.Load(cwd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		executionID := watchExecutionID
		if executionID == "" {
			executionID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		fmt.Printf("Watching %s for changes...\n", path)

		watcher, err := watch.NewContextWatcher(path, executionID, watchProjectID, cfg.DebounceWindow(), func(u watch.Update) {
			stamp := time.Now().Format("15:04:05")
			if u.Err != nil {
				fmt.Printf("[%s] projection failed: %v\n", stamp, u.Err)
				return
			}
			p := u.Projection
			line := fmt.Sprintf("[%s] %s %.1f%% (%d/%d)", stamp, p.Status, p.Progress, p.Totals.Completed, p.Totals.Total)
			if p.CurrentTask != "" {
				line += fmt.Sprintf(" task %s", p.CurrentTask)
			}
			fmt.Println(line)
		})
		if err != nil {
			return err
		}

		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchExecutionID, "execution-id", "",
		"Execution identifier (defaults to the file name without extension)")
	watchCmd.Flags().StringVar(&watchProjectID, "project", "",
		"Project identifier, optionally customer-scoped (customer/project)")
	RootCmd.AddCommand(watchCmd)
}

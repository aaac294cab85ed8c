package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/infrastructure/config"
	"github.com/beaconhq/beacon/internal/infrastructure/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a beacon workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()

		contexts := storage.NewContextRepository(cwd)
		if contexts.IsInitialized() {
			fmt.Println("Workspace already initialized.")
			return nil
		}
		if err := contexts.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		cfg := config.Default()
		cfg.WorkspaceRoot = cwd
		if err := config.Save(cwd, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Initialized beacon workspace in %s\n", cwd)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}

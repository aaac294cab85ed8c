package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/beaconhq/beacon/internal/infrastructure/mcp"
	"github.com/beaconhq/beacon/internal/infrastructure/storage"
	"github.com/beaconhq/beacon/pkg/domain/projection"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the beacon MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("BEACON_SKIP_MCP_START") == "true" {
			return nil
		}
		cwd, _ := os.Getwd()

		var contexts *storage.ContextRepository
		repo := storage.NewContextRepository(cwd)
		if repo.IsInitialized() {
			contexts = repo
		}

		store, err := loadStoreFromContexts(contexts)
		if err != nil {
			return err
		}

		server, err := inframcp.NewServer(store, contexts)
		if err != nil {
			return err
		}

		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			err = server.StartStdio()
		case "http":
			err = server.StartHTTP(mcpAddr)
		default:
			err = fmt.Errorf("unsupported transport: %s", mcpTransport)
		}
		return err
	},
}

// loadStoreFromContexts rebuilds the projection store from the persisted task
// context documents, so the status tools see every execution earlier intakes
// recorded. Unreadable or non-object documents are skipped.
func loadStoreFromContexts(contexts *storage.ContextRepository) (*storage.MemoryStore, error) {
	store := storage.NewMemoryStore()
	if contexts == nil {
		return store, nil
	}

	ids, err := contexts.ListContexts()
	if err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	for _, id := range ids {
		doc, err := contexts.LoadContext(id)
		if err != nil {
			continue
		}
		p, err := projection.FromTaskContext(doc, id, "")
		if err != nil {
			continue
		}
		store.Put(p)
	}
	return store, nil
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for the http transport")
	RootCmd.AddCommand(mcpCmd)
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iudanet/bizdesk/internal/models"
)

func newStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache freshness and record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.cli.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	meta := c.store.Metadata()

	c.io.Println("=== Local Cache Status ===")
	c.io.Println()
	c.io.Printf("Server:        %s\n", c.cfg.ServerURL)
	c.io.Printf("Storage:       %s (%s)\n", c.cfg.Storage.Path, c.cfg.Storage.Driver)
	c.io.Printf("Sync interval: %d min\n", meta.SyncIntervalMinutes)
	c.io.Printf("Conflicts:     %s\n", c.dataService.Policy())

	if meta.LastSync == "" {
		c.io.Println("Last sync:     never")
	} else {
		c.io.Printf("Last sync:     %s\n", meta.LastSync)
	}

	c.io.Println()
	if c.store.IsStale() {
		c.io.Println("⚠️  Data is stale. Run 'bizdesk sync' to refresh it.")
	} else {
		c.io.Println("✓ Data is fresh")
	}

	c.io.Println()
	for _, col := range models.Collections {
		c.io.Printf("%-16s %d\n", col.String()+":", len(c.store.Get(col)))
	}

	return nil
}

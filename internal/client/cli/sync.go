package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

func newSyncCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh every collection from the server now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.cli.runSync(cmd.Context())
		},
	}
}

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()
	c.io.Println("Fetching collections from server...")

	result := c.syncService.ForceSyncNow(ctx)

	c.io.Println()
	for _, cr := range result.Collections {
		switch {
		case cr.Err != nil:
			c.io.Printf("✗ %-16s %v\n", cr.Collection, cr.Err)
		case cr.Replaced:
			c.io.Printf("↻ %-16s %d record(s), updated\n", cr.Collection, cr.Fetched)
		default:
			c.io.Printf("✓ %-16s %d record(s), unchanged\n", cr.Collection, cr.Fetched)
		}
	}

	c.io.Println()
	c.io.Printf("Updated: %d  Unchanged: %d  Failed: %d  (%s)\n",
		result.Replaced, result.Unchanged, result.Failed,
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if !result.Succeeded() {
		return errors.New("synchronization failed: no collection could be fetched, cached data kept")
	}
	if result.Failed > 0 {
		c.io.Println("Some collections could not be fetched; their cached data was kept.")
	}
	return nil
}

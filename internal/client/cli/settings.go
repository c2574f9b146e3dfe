package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/bizdesk/internal/validation"
)

func newIntervalCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "interval [minutes]",
		Short: "Show or change the background sync interval",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				s.cli.io.Printf("Sync interval: %d min\n", s.cli.store.Metadata().SyncIntervalMinutes)
				return nil
			}

			minutes, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid interval %q: must be a whole number of minutes", args[0])
			}
			return s.cli.runInterval(cmd.Context(), minutes)
		},
	}
}

func newResetCmd(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every cached record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.cli.runReset(cmd.Context(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *Cli) runInterval(ctx context.Context, minutes int) error {
	if err := validation.ValidateSyncInterval(minutes); err != nil {
		return err
	}
	if err := c.store.SetSyncInterval(ctx, minutes); err != nil {
		return fmt.Errorf("failed to set sync interval: %w", err)
	}

	c.io.Printf("✓ Sync interval set to %d min\n", minutes)
	return nil
}

func (c *Cli) runReset(ctx context.Context, yes bool) error {
	if !yes {
		confirm, err := c.io.ReadInput("Drop all cached records? They will be refetched on the next sync. (yes/no): ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		confirm = strings.ToLower(confirm)
		if confirm != "yes" && confirm != "y" {
			c.io.Println("Reset cancelled.")
			return nil
		}
	}

	c.store.Reset(ctx)
	c.io.Println("✓ Local cache cleared")
	return nil
}

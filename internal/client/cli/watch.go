package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/bizdesk/internal/models"
)

func newWatchCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the cache in sync and print every change until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.cli.runWatch(cmd.Context())
		},
	}
}

func (c *Cli) runWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Подписчик и таймер пишут из разных горутин
	var mu sync.Mutex
	printf := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		c.io.Printf(format, a...)
	}

	unsubscribe := c.store.Subscribe(func(snap *models.Snapshot) {
		printf("[%s] cache updated: %s\n", clock(), summary(snap))
	})
	defer unsubscribe()

	printf("Watching %s every %d min, press Ctrl+C to stop\n", c.cfg.ServerURL, c.store.Metadata().SyncIntervalMinutes)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.syncService.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(c.cfg.Sync.StalenessPoll)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				printf("[%s] %s\n", clock(), c.stalenessLine())
			}
		}
	})

	err := g.Wait()
	printf("Stopped.\n")
	return err
}

func (c *Cli) stalenessLine() string {
	lastSync := c.store.LastSync()
	if lastSync == "" {
		lastSync = "never"
	}
	if c.store.IsStale() {
		return "stale (last sync: " + lastSync + ")"
	}
	return "fresh (last sync: " + lastSync + ")"
}

func clock() string {
	return time.Now().Format(time.TimeOnly)
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/bizdesk/internal/client/data"
	"github.com/iudanet/bizdesk/internal/models"
	"github.com/iudanet/bizdesk/internal/validation"
)

func newListCmd(s *session) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List cached records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCollection(args[0])
			if err != nil {
				return err
			}
			return s.cli.runList(c, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newAddCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "add <collection> <json>",
		Short: "Create a record",
		Example: `  bizdesk add clients '{"name":"Acme","email":"ops@acme.test"}'`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCollection(args[0])
			if err != nil {
				return err
			}
			draft, err := parseRecord(args[1])
			if err != nil {
				return err
			}
			return s.cli.runAdd(cmd.Context(), c, draft)
		},
	}
}

func newUpdateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> <json>",
		Short: "Update fields of a record",
		Example: `  bizdesk update tasks 42 '{"status":"done"}'`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCollection(args[0])
			if err != nil {
				return err
			}
			if err := validation.ValidateRecordID(args[1]); err != nil {
				return err
			}
			patch, err := parseRecord(args[2])
			if err != nil {
				return err
			}
			return s.cli.runUpdate(cmd.Context(), c, args[1], patch)
		},
	}
}

func newDeleteCmd(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCollection(args[0])
			if err != nil {
				return err
			}
			if err := validation.ValidateRecordID(args[1]); err != nil {
				return err
			}
			return s.cli.runDelete(cmd.Context(), c, args[1], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func parseCollection(name string) (models.Collection, error) {
	if err := validation.ValidateCollection(name); err != nil {
		return "", err
	}
	return models.Collection(name), nil
}

func parseRecord(raw string) (models.Record, error) {
	record, err := models.DecodeRecord([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid record JSON: %w", err)
	}
	return record, nil
}

func (c *Cli) runList(col models.Collection, jsonOutput bool) error {
	records := c.store.Get(col)

	if jsonOutput {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal records: %w", err)
		}
		c.io.Println(string(out))
		return nil
	}

	c.io.Printf("=== %s ===\n", col)
	c.io.Println()

	if len(records) == 0 {
		c.io.Printf("No records in %s.\n", col)
		if c.store.LastSync() == "" {
			c.io.Println()
			c.io.Println("The cache has never been synchronized. Run 'bizdesk sync'.")
		}
		return nil
	}

	c.io.Printf("Found %d record(s):\n", len(records))
	c.io.Println()
	for i, r := range records {
		printRecord(c.io, i+1, r)
	}

	if c.store.IsStale() {
		c.io.Println("⚠️  Data may be out of date. Run 'bizdesk sync' to refresh it.")
	}
	return nil
}

func (c *Cli) runAdd(ctx context.Context, col models.Collection, draft models.Record) error {
	failures := c.dataService.Failures()

	local := c.dataService.CreateRecord(ctx, col, draft)
	if local == nil {
		return fmt.Errorf("failed to create record in %s", col)
	}

	c.io.Printf("✓ Saved locally as %s\n", local.ID())
	return c.awaitServer(failures)
}

func (c *Cli) runUpdate(ctx context.Context, col models.Collection, id string, patch models.Record) error {
	failures := c.dataService.Failures()

	if !c.dataService.UpdateRecord(ctx, col, id, patch) {
		return fmt.Errorf("record %s not found in %s. Run 'bizdesk sync' first", id, col)
	}

	c.io.Printf("✓ Updated %s/%s locally\n", col, id)
	return c.awaitServer(failures)
}

func (c *Cli) runDelete(ctx context.Context, col models.Collection, id string, yes bool) error {
	record := c.findRecord(col, id)
	if record == nil {
		return fmt.Errorf("record %s not found in %s. Run 'bizdesk sync' first", id, col)
	}

	if !yes {
		c.io.Println("About to delete:")
		printRecord(c.io, 0, record)

		confirm, err := c.io.ReadInput("Are you sure you want to delete this record? (yes/no): ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		confirm = strings.ToLower(confirm)
		if confirm != "yes" && confirm != "y" {
			c.io.Println()
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	failures := c.dataService.Failures()
	if !c.dataService.DeleteRecord(ctx, col, id) {
		return fmt.Errorf("record %s not found in %s", id, col)
	}

	c.io.Printf("✓ Deleted %s/%s locally\n", col, id)
	return c.awaitServer(failures)
}

// awaitServer ждёт подтверждения сервера для изменений текущей команды
func (c *Cli) awaitServer(failuresBefore int) error {
	c.io.Println("Confirming with server...")
	c.dataService.Wait()

	if c.dataService.Failures() == failuresBefore {
		c.io.Println("✓ Confirmed by server")
		return nil
	}

	policy := c.dataService.Policy()
	if policy == data.RevertOnFailure {
		c.io.Println("The local change was reverted.")
	} else {
		c.io.Println("The local change is kept until the next sync.")
	}
	return fmt.Errorf("server rejected the change (conflict policy %s), see log for details", policy)
}

func (c *Cli) findRecord(col models.Collection, id string) models.Record {
	for _, r := range c.store.Get(col) {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued actions against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pending, err := app.Queue.Len(ctx)
			if err != nil {
				return err
			}
			if pending == 0 {
				fmt.Println("Nothing to sync")
				return nil
			}

			if !app.API.Online(ctx) {
				return fmt.Errorf("server unreachable, %d action(s) still queued", pending)
			}

			delivered, err := app.Queue.Drain(ctx, app.API)
			if delivered > 0 {
				fmt.Printf("Synced %d action(s)\n", delivered)
			}
			if err != nil {
				remaining, lerr := app.Queue.Len(ctx)
				if lerr != nil {
					return err
				}
				return fmt.Errorf("sync stopped with %d action(s) remaining: %w", remaining, err)
			}

			fmt.Println("Queue empty")
			return nil
		},
	}
}

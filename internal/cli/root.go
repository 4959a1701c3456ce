package cli

import (
	"context"
	"fmt"

	"fieldtrack-backend/internal/client"
	"fieldtrack-backend/internal/offline"

	"github.com/spf13/cobra"
)

// App holds the wired dependencies CLI commands run against.
type App struct {
	ConfigPath string
	Config     *client.Config
	Queue      *offline.Queue
	API        *client.API
	Location   client.LocationProvider
}

// NewRootCmd creates the top-level "fieldctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldctl",
		Short: "Field officer companion for day tracking and activity records",
		Long: `fieldctl records your workday from the terminal: start and end the day,
log meetings, samples and sales. Actions taken while offline are queued
locally and synced to the server when connectivity returns.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newStartDayCmd(app),
		newEndDayCmd(app),
		newStatusCmd(app),
		newSummaryCmd(app),
		newMeetingCmd(app),
		newSampleCmd(app),
		newSaleCmd(app),
		newSyncCmd(app),
	)

	return root
}

// submit sends an action directly when the server is reachable, otherwise
// queues it for a later sync. Pending actions are always flushed first so
// the server sees operations in the order the officer performed them.
func (app *App) submit(ctx context.Context, kind offline.Kind, payload interface{}, direct func(context.Context) error) error {
	if !app.API.Online(ctx) {
		action, err := app.Queue.Enqueue(ctx, kind, payload)
		if err != nil {
			return err
		}
		n, err := app.Queue.Len(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Server unreachable, queued %s as action #%d (%d pending)\n", kind, action.ID, n)
		return nil
	}

	if n, err := app.Queue.Len(ctx); err == nil && n > 0 {
		delivered, err := app.Queue.Drain(ctx, app.API)
		if delivered > 0 {
			fmt.Printf("Synced %d pending action(s)\n", delivered)
		}
		if err != nil {
			// The new action must not jump ahead of older queued ones.
			action, qerr := app.Queue.Enqueue(ctx, kind, payload)
			if qerr != nil {
				return qerr
			}
			fmt.Printf("Sync incomplete (%v), queued %s as action #%d\n", err, kind, action.ID)
			return nil
		}
	}

	return direct(ctx)
}

package cli

import (
	"context"
	"fmt"
	"time"

	"fieldtrack-backend/internal/geo"
	"fieldtrack-backend/internal/offline"

	"github.com/spf13/cobra"
)

// locationFlags lets an officer override the GPS provider with explicit
// coordinates.
type locationFlags struct {
	lat float64
	lng float64
	set bool
}

func addLocationFlags(cmd *cobra.Command, f *locationFlags) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "Latitude (overrides GPS)")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "Longitude (overrides GPS)")
}

func (f *locationFlags) resolve(ctx context.Context, cmd *cobra.Command, app *App) (geo.Point, error) {
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		p := geo.Point{Lat: f.lat, Lng: f.lng}
		if err := p.Validate(); err != nil {
			return geo.Point{}, err
		}
		return p, nil
	}
	return app.Location.CurrentLocation(ctx)
}

func newStartDayCmd(app *App) *cobra.Command {
	var loc locationFlags

	cmd := &cobra.Command{
		Use:   "start-day",
		Short: "Start today's work session at your current location",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			point, err := loc.resolve(ctx, cmd, app)
			if err != nil {
				return err
			}

			return app.submit(ctx, offline.KindStartDay, offline.DayPayload{Lat: point.Lat, Lng: point.Lng},
				func(ctx context.Context) error {
					ws, err := app.API.StartDay(ctx, point)
					if err != nil {
						return err
					}
					fmt.Printf("Day started at %s (%.5f, %.5f)\n",
						time.Unix(ws.StartTime, 0).Format("15:04"), point.Lat, point.Lng)
					return nil
				})
		},
	}

	addLocationFlags(cmd, &loc)
	return cmd
}

func newEndDayCmd(app *App) *cobra.Command {
	var loc locationFlags

	cmd := &cobra.Command{
		Use:   "end-day",
		Short: "End today's work session and record the distance covered",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			point, err := loc.resolve(ctx, cmd, app)
			if err != nil {
				return err
			}

			return app.submit(ctx, offline.KindEndDay, offline.DayPayload{Lat: point.Lat, Lng: point.Lng},
				func(ctx context.Context) error {
					ws, err := app.API.EndDay(ctx, point)
					if err != nil {
						return err
					}
					fmt.Printf("Day ended, %.2f km covered\n", ws.TotalDistance)
					return nil
				})
		},
	}

	addLocationFlags(cmd, &loc)
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's session and the local queue state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pending, err := app.Queue.Len(ctx)
			if err != nil {
				return err
			}

			if !app.API.Online(ctx) {
				fmt.Printf("Server: unreachable\nQueued actions: %d\n", pending)
				return nil
			}

			ws, err := app.API.Today(ctx)
			if err != nil {
				return err
			}

			fmt.Println("Server: online")
			switch {
			case ws == nil:
				fmt.Println("Day: not started")
			case ws.IsActive:
				fmt.Printf("Day: active since %s\n", time.Unix(ws.StartTime, 0).Format("15:04"))
			default:
				fmt.Printf("Day: ended, %.2f km covered\n", ws.TotalDistance)
			}
			fmt.Printf("Queued actions: %d\n", pending)
			return nil
		},
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's activity counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			summary, err := app.API.Summary(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Meetings: %d\nSamples:  %d\nSales:    %d\n",
				summary.MeetingsCount, summary.SamplesCount, summary.SalesCount)
			switch {
			case summary.DayEnded:
				ended := "today"
				if summary.LastEndedTime != nil {
					ended = time.Unix(*summary.LastEndedTime, 0).Format("15:04")
				}
				fmt.Printf("Day ended at %s\n", ended)
			case summary.DayStarted:
				fmt.Println("Day in progress")
			default:
				fmt.Println("Day not started")
			}
			return nil
		},
	}
}

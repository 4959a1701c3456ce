package cli

import (
	"context"
	"fmt"
	"time"

	"fieldtrack-backend/internal/offline"

	"github.com/spf13/cobra"
)

func newMeetingCmd(app *App) *cobra.Command {
	var (
		meetingType string
		personName  string
		village     string
		category    string
		attendees   int
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Record a meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			payload := offline.MeetingPayload{
				Type:           meetingType,
				PersonName:     personName,
				Village:        village,
				Category:       category,
				AttendeesCount: attendees,
				Notes:          notes,
				Timestamp:      time.Now().Unix(),
			}

			return app.submit(ctx, offline.KindAddMeeting, payload,
				func(ctx context.Context) error {
					if err := app.API.AddMeeting(ctx, payload); err != nil {
						return err
					}
					fmt.Printf("Meeting recorded (%s, %s)\n", meetingType, village)
					return nil
				})
		},
	}

	cmd.Flags().StringVar(&meetingType, "type", "one-on-one", "Meeting type: one-on-one or group")
	cmd.Flags().StringVar(&personName, "person", "", "Person met")
	cmd.Flags().StringVar(&village, "village", "", "Village name")
	cmd.Flags().StringVar(&category, "category", "farmer", "Category: farmer, seller, distributor or other")
	cmd.Flags().IntVar(&attendees, "attendees", 1, "Number of attendees")
	cmd.Flags().StringVar(&notes, "notes", "", "Meeting notes")

	return cmd
}

func newSampleCmd(app *App) *cobra.Command {
	var (
		product  string
		quantity int
		receiver string
		purpose  string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Record a product sample distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			payload := offline.SamplePayload{
				Product:      product,
				Quantity:     quantity,
				ReceiverName: receiver,
				Purpose:      purpose,
				RecordedAt:   time.Now().Unix(),
			}

			return app.submit(ctx, offline.KindAddSample, payload,
				func(ctx context.Context) error {
					if err := app.API.AddSample(ctx, payload); err != nil {
						return err
					}
					fmt.Printf("Sample recorded (%s x%d to %s)\n", product, quantity, receiver)
					return nil
				})
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Product name")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity given")
	cmd.Flags().StringVar(&receiver, "receiver", "", "Who received the sample")
	cmd.Flags().StringVar(&purpose, "purpose", "", "Purpose of the sample")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("receiver")

	return cmd
}

func newSaleCmd(app *App) *cobra.Command {
	var (
		product  string
		quantity int
		amount   float64
		saleType string
		buyer    string
	)

	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record a sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			payload := offline.SalePayload{
				Product:    product,
				Quantity:   quantity,
				Amount:     amount,
				Type:       saleType,
				BuyerName:  buyer,
				RecordedAt: time.Now().Unix(),
			}

			return app.submit(ctx, offline.KindAddSale, payload,
				func(ctx context.Context) error {
					if err := app.API.AddSale(ctx, payload); err != nil {
						return err
					}
					fmt.Printf("Sale recorded (%s x%d, ₹%.2f %s)\n", product, quantity, amount, saleType)
					return nil
				})
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Product name")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity sold")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Sale amount")
	cmd.Flags().StringVar(&saleType, "type", "B2C", "Sale type: B2C or B2B")
	cmd.Flags().StringVar(&buyer, "buyer", "", "Buyer name")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("buyer")

	return cmd
}

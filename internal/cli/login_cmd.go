package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the server and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			token, err := app.API.Login(ctx, email, password)
			if err != nil {
				return err
			}

			app.Config.Token = token
			if err := app.Config.SaveConfig(app.ConfigPath); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

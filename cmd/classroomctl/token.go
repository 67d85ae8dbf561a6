package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-classroom/pkg/classroom"
	"github.com/tendant/simple-classroom/pkg/classroom/api"
)

// NewTokenCommand signs development bearer tokens with JWT_SECRET.
func NewTokenCommand() *cobra.Command {
	var p classroom.Principal

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Environment == "production" {
				return errors.New("refusing to issue tokens in production")
			}
			auth, err := api.NewAuth(cfg.JWTSecret)
			if err != nil {
				return err
			}
			token, err := api.IssueToken(auth, p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.ID, "sub", "", "subject (user id)")
	cmd.Flags().StringVar(&p.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&p.PhotoURL, "picture", "", "photo URL")
	cmd.Flags().BoolVar(&p.IsAdmin, "admin", false, "grant the admin flag")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charforge/internal/storage/postgres"
)

func newAccountCmd(opts *options) *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Manage player accounts",
	}
	account.AddCommand(&cobra.Command{
		Use:   "set-role <username> <player|gm|admin>",
		Short: "Change an account's privilege level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			username, role := args[0], args[1]
			if !postgres.ValidRole(role) {
				return fmt.Errorf("invalid role %q: must be one of %s", role, strings.Join(postgres.Roles(), ", "))
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			pool, err := postgres.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			repo := postgres.NewAccountRepository(pool.DB())
			acct, err := repo.GetByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("looking up account %q: %w", username, err)
			}
			if err := repo.SetRole(ctx, acct.Username, role); err != nil {
				return fmt.Errorf("setting role: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set role for %s (#%d): %s -> %s [%s]\n",
				acct.Username, acct.ID, acct.Role, role, time.Since(start))
			return nil
		},
	})
	return account
}

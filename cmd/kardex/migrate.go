package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes de PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.App.Storage != "postgres" {
			return errors.New("migrate requiere APP_STORAGE=postgres")
		}
		pool, err := postgres.NewPool(cmd.Context(), cfg.DB, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := postgres.Migrate(cmd.Context(), pool, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migraciones aplicadas\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/ledger"
)

var (
	rebuildVariant string
	rebuildForce   bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Reconstruye la proyección desde el kardex",
	Long: "Reproduce los movimientos y compara con el estado vivo. Si hay diferencias no reemplaza nada " +
		"salvo con --force; en ambos casos termina con error para que el operador lo note.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		report, rerr := app.Ledger.RebuildFromLog(cmd.Context(), rebuildVariant, ledger.RebuildOptions{Force: rebuildForce})
		if report != nil {
			if err := printJSON(cmd.OutOrStdout(), dto.FromRebuild(report)); err != nil {
				app.Release()
				return err
			}
		}
		if report != nil && report.Replaced {
			if err := app.Close(cmd.Context()); err != nil {
				return err
			}
		} else {
			app.Release()
		}
		return rerr
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compara la proyección con el kardex sin modificar nada",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Release()

		report, verr := app.Ledger.Verify(cmd.Context(), rebuildVariant)
		if report != nil {
			if err := printJSON(cmd.OutOrStdout(), dto.FromRebuild(report)); err != nil {
				return err
			}
		}
		return verr
	},
}

func init() {
	rebuildCmd.Flags().StringVar(&rebuildVariant, "variant", "", "solo esta variante (vacío = todas)")
	rebuildCmd.Flags().BoolVar(&rebuildForce, "force", false, "reemplazar el estado vivo aunque haya diferencias")
	verifyCmd.Flags().StringVar(&rebuildVariant, "variant", "", "solo esta variante (vacío = todas)")
	rootCmd.AddCommand(rebuildCmd, verifyCmd)
}

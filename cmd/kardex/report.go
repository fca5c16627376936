package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/inventory"
	infrapdf "github.com/jhoicas/kardex/internal/infrastructure/pdf"
)

var (
	reportVariant string
	reportOut     string
	reportQuery   dto.KardexQuery
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Genera el kardex de una variante en PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportVariant == "" {
			return errors.New("--variant es requerido")
		}
		app, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Release()

		uc := inventory.NewReportUseCase(app.Ledger, infrapdf.NewKardexPDFGenerator())
		pdf, err := uc.KardexPDF(cmd.Context(), reportVariant, reportQuery)
		if err != nil {
			return err
		}
		out := reportOut
		if out == "" {
			out = fmt.Sprintf("kardex-%s.pdf", reportVariant)
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return fmt.Errorf("escribir %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", out, len(pdf))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportVariant, "variant", "", "ID de la variante")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "archivo de salida (por defecto kardex-<variante>.pdf)")
	reportCmd.Flags().StringVar(&reportQuery.From, "from", "", "desde (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportQuery.To, "to", "", "hasta (YYYY-MM-DD, inclusive)")
	rootCmd.AddCommand(reportCmd)
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/inventory"
)

var (
	valuationJSON    bool
	valuationReorder bool
)

var valuationCmd = &cobra.Command{
	Use:   "valuation",
	Short: "Valorización del inventario y alertas de reorden",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Release()

		if valuationReorder {
			list, err := inventory.NewReplenishmentUseCase(app.Ledger, cfg.Ledger.CostScale).GenerateReplenishmentList(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		}

		report, err := app.Ledger.Valuation(cmd.Context())
		if err != nil {
			return err
		}
		out := dto.FromValuation(report)
		if valuationJSON {
			return printJSON(cmd.OutOrStdout(), out)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SKU\tNOMBRE\tUNIDADES\tCOSTO\tVALOR")
		for _, it := range out.Items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", it.SKU, it.Name, it.Quantity, it.UnitCost.StringFixed(2), it.Value.StringFixed(2))
		}
		fmt.Fprintf(w, "\t\t%d\t%s\t%s\n", out.TotalUnits, out.AverageCost.StringFixed(2), out.TotalValue.StringFixed(2))
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "alertas de reorden: %d (%s%% de variantes activas)\n",
			len(out.ReorderAlerts), out.PercentBelowThreshold.Shift(2).StringFixed(1))
		return nil
	},
}

func init() {
	valuationCmd.Flags().BoolVar(&valuationJSON, "json", false, "salida JSON")
	valuationCmd.Flags().BoolVar(&valuationReorder, "reorder", false, "lista de reposición en lugar de la valorización")
	rootCmd.AddCommand(valuationCmd)
}

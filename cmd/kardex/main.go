// Comando kardex: operación del kardex (migraciones, reconstrucción, verificación, reportes).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex/internal/bootstrap"
	"github.com/jhoicas/kardex/pkg/config"
	"github.com/jhoicas/kardex/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "kardex",
	Short:         "Operación del kardex de inventario",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		level := cfg.App.LogLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		// Los logs van a stderr; stdout queda para la salida del comando.
		log = logger.New(logger.Config{Env: cfg.App.Env, Level: level, Out: os.Stderr})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "logs en nivel debug")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openLedger arranca el ledger sin publicar eventos externos.
func openLedger(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.Open(ctx, cfg, log, bootstrap.Options{})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

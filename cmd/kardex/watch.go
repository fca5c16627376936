package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/kardex/internal/application/dto"
	infraredis "github.com/jhoicas/kardex/internal/infrastructure/redis"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Muestra los movimientos publicados en Redis en tiempo real",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Redis.Enabled() {
			return errors.New("watch requiere REDIS_ADDR")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		out := cmd.OutOrStdout()
		log.Info().Str("channel", cfg.Redis.Channel).Msg("escuchando movimientos")
		return infraredis.Watch(ctx, rdb, cfg.Redis.Channel, log.Zerolog(), func(ev dto.MovementEventDTO) {
			m := ev.Movement
			fmt.Fprintf(out, "#%d %s %-8s %s qty=%d total=%d costo=%s\n",
				m.ID, m.Timestamp.Format("2006-01-02 15:04:05"), m.Type, m.SKU, m.Quantity,
				ev.Variant.TotalQuantity, ev.Variant.UnitCost.StringFixed(2))
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

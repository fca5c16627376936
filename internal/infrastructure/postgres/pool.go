package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex/pkg/config"
	"github.com/jhoicas/kardex/pkg/logger"
)

// NewPool abre el pool de conexiones del kardex. DATABASE_URL tiene prioridad sobre DB_HOST/DB_PORT/...
// Las consultas se registran en el logger del componente "postgres" (advertencias y errores salvo en debug).
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	zl := log.Component("postgres")
	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{Logger: queryLogger(zl), LogLevel: traceLevel(zl.GetLevel())}

	// NUMERIC <-> shopspring/decimal en todas las conexiones (costos del kardex).
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	zl.Info().Int32("max_conns", poolConfig.MaxConns).Msg("pool de PostgreSQL listo")
	return pool, nil
}

// queryLogger adapta tracelog a zerolog.
func queryLogger(zl zerolog.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		var ev *zerolog.Event
		switch level {
		case tracelog.LogLevelError:
			ev = zl.Error()
		case tracelog.LogLevelWarn:
			ev = zl.Warn()
		case tracelog.LogLevelInfo:
			ev = zl.Info()
		default:
			ev = zl.Debug()
		}
		ev.Fields(data).Msg(msg)
	}
}

func traceLevel(l zerolog.Level) tracelog.LogLevel {
	switch {
	case l <= zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case l == zerolog.InfoLevel, l == zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}

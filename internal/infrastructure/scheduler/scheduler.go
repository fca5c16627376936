// Package scheduler ejecuta los trabajos periódicos del kardex (checkpoint y verificación de drift).
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
)

// Nombres de los trabajos.
const (
	JobCheckpoint = "checkpoint"
	JobVerify     = "verify"
)

// Ledger lo que los trabajos necesitan del servicio.
type Ledger interface {
	Checkpoint(ctx context.Context) error
	Verify(ctx context.Context, variantID string) (*ledger.RebuildReport, error)
}

type job struct {
	spec string
	run  func(ctx context.Context) error
}

// Scheduler envoltorio de robfig/cron con trabajos nombrados. Una ejecución que aún no termina
// hace que la siguiente se salte.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]job
	log     zerolog.Logger
	timeout time.Duration
}

// New crea el scheduler y registra los trabajos con spec no vacío (formato cron con segundos).
func New(l Ledger, checkpointSpec, verifySpec string, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		jobs:    map[string]job{},
		log:     log.With().Str("component", "scheduler").Logger(),
		timeout: 10 * time.Minute,
	}

	specs := map[string]job{
		JobCheckpoint: {spec: checkpointSpec, run: l.Checkpoint},
		JobVerify: {spec: verifySpec, run: func(ctx context.Context) error {
			report, err := l.Verify(ctx, "")
			if err != nil {
				return err
			}
			s.log.Info().Int("variants", report.Variants).Int("movements", report.Movements).Msg("kardex verificado")
			return nil
		}},
	}
	for name, j := range specs {
		if j.spec == "" {
			continue
		}
		if err := s.add(name, j); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(name string, j job) error {
	_, err := s.cron.AddFunc(j.spec, func() {
		if err := s.Run(context.Background(), name); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("trabajo programado falló")
		}
	})
	if err != nil {
		return fmt.Errorf("registrar trabajo %s (%q): %w", name, j.spec, err)
	}
	s.jobs[name] = j
	return nil
}

// Jobs nombres de los trabajos registrados, ordenados.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run ejecuta un trabajo de inmediato. El drift detectado se registra como advertencia y se
// devuelve al llamador.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("trabajo desconocido %q", name)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	err := j.run(ctx)
	var drift *domain.DriftDetectedError
	switch {
	case errors.As(err, &drift):
		s.log.Warn().Str("job", name).Int("drifts", len(drift.Drifts)).Msg("drift entre proyección y kardex")
	case err != nil:
		return err
	default:
		s.log.Debug().Str("job", name).Dur("elapsed", time.Since(started)).Msg("trabajo completado")
	}
	return err
}

// Start inicia la ejecución programada.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop detiene el scheduler y espera a que terminen los trabajos en curso (o a que ctx expire).
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

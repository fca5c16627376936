package scheduler_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/infrastructure/scheduler"
)

type fakeLedger struct {
	checkpoints int
	verifies    int
	drift       bool
}

func (f *fakeLedger) Checkpoint(context.Context) error {
	f.checkpoints++
	return nil
}

func (f *fakeLedger) Verify(context.Context, string) (*ledger.RebuildReport, error) {
	f.verifies++
	report := &ledger.RebuildReport{Variants: 1}
	if f.drift {
		d := domain.Drift{VariantID: "v1", Field: "stock[W1]", Live: "3", Replayed: "2"}
		report.Drifts = []domain.Drift{d}
		return report, &domain.DriftDetectedError{Drifts: report.Drifts}
	}
	return report, nil
}

func TestScheduler_RegistraYEjecuta(t *testing.T) {
	l := &fakeLedger{}
	s, err := scheduler.New(l, "0 */15 * * * *", "0 30 3 * * *", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{scheduler.JobCheckpoint, scheduler.JobVerify}, s.Jobs())

	require.NoError(t, s.Run(context.Background(), scheduler.JobCheckpoint))
	require.NoError(t, s.Run(context.Background(), scheduler.JobVerify))
	assert.Equal(t, 1, l.checkpoints)
	assert.Equal(t, 1, l.verifies)

	assert.Error(t, s.Run(context.Background(), "otro"))
}

func TestScheduler_DriftSeDevuelve(t *testing.T) {
	l := &fakeLedger{drift: true}
	s, err := scheduler.New(l, "", "@every 1h", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{scheduler.JobVerify}, s.Jobs(), "spec vacío desactiva el trabajo")

	err = s.Run(context.Background(), scheduler.JobVerify)
	assert.ErrorIs(t, err, domain.ErrDriftDetected)
}

func TestScheduler_SpecInvalido(t *testing.T) {
	_, err := scheduler.New(&fakeLedger{}, "cada rato", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := scheduler.New(&fakeLedger{}, "@every 1h", "", zerolog.Nop())
	require.NoError(t, err)
	s.Start()
	s.Stop(context.Background())
}

package ledger_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
	"github.com/jhoicas/kardex/internal/infrastructure/memory"
)

const (
	w1 = "W1"
	w2 = "W2"
)

type fixture struct {
	svc         *ledger.Service
	log         *memory.MovementLog
	products    *memory.ProductRepo
	warehouses  *memory.WarehouseRepo
	checkpoints *memory.CheckpointStore
}

type fixtureOpts struct {
	log         repository.MovementLog
	sink        ledger.EventSink
	lockTimeout time.Duration
}

func newFixture(t *testing.T, opts fixtureOpts, variantIDs ...string) *fixture {
	t.Helper()
	f := &fixture{
		log:         memory.NewMovementLog(),
		products:    memory.NewProductRepository(),
		warehouses:  memory.NewWarehouseRepository(entity.Warehouse{ID: w1, Name: "Principal"}, entity.Warehouse{ID: w2, Name: "Secundaria"}),
		checkpoints: memory.NewCheckpointStore(),
	}
	if len(variantIDs) == 0 {
		variantIDs = []string{"v1"}
	}
	seedVariants(t, f.products, variantIDs...)

	var log repository.MovementLog = f.log
	if opts.log != nil {
		log = opts.log
	}
	f.svc = ledger.NewService(ledger.Deps{
		Log:         log,
		Products:    f.products,
		Warehouses:  f.warehouses,
		Checkpoints: f.checkpoints,
		Sink:        opts.sink,
		Logger:      zerolog.Nop(),
	}, ledger.Config{LockTimeout: opts.lockTimeout})
	require.NoError(t, f.svc.Start(context.Background()))
	return f
}

func seedVariants(t *testing.T, repo *memory.ProductRepo, ids ...string) {
	t.Helper()
	product := &entity.Product{ID: "p1", Name: "Camiseta"}
	for _, id := range ids {
		product.Variants = append(product.Variants, entity.Variant{
			ID: id, ProductID: "p1", SKU: "SKU-" + id, Name: "Camiseta " + id,
			RetailPrice: decimal.NewFromInt(2000), ReorderLevel: 5, Enabled: true,
		})
	}
	require.NoError(t, repo.Create(context.Background(), product))
}

func newMemoryLog() *memory.MovementLog { return memory.NewMovementLog() }

func repositoryAll() repository.ReplayFilter { return repository.ReplayFilter{} }

func entityDraftWithTx(variantID, txID string) ledger.MovementDraft {
	dr := draft(variantID, entity.In{To: w1, Qty: 1, UnitCost: decimal.NewFromInt(1)})
	dr.TransactionID = txID
	return dr
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func draft(variantID string, body entity.MovementBody) ledger.MovementDraft {
	return ledger.MovementDraft{VariantID: variantID, Body: body}
}

func (f *fixture) submit(t *testing.T, variantID string, body entity.MovementBody) *entity.Variant {
	t.Helper()
	v, err := f.svc.Submit(context.Background(), draft(variantID, body))
	require.NoError(t, err)
	return v
}

// failingLog falla los Append mientras fail sea true.
type failingLog struct {
	*memory.MovementLog
	mu   sync.Mutex
	fail bool
}

func (l *failingLog) setFail(v bool) {
	l.mu.Lock()
	l.fail = v
	l.mu.Unlock()
}

func (l *failingLog) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	l.mu.Lock()
	fail := l.fail
	l.mu.Unlock()
	if fail {
		return 0, errors.New("disco lleno")
	}
	return l.MovementLog.Append(ctx, m)
}

// blockingLog retiene cada Append hasta que se cierre release.
type blockingLog struct {
	*memory.MovementLog
	entered chan struct{}
	release chan struct{}
}

func newBlockingLog() *blockingLog {
	return &blockingLog{MovementLog: memory.NewMovementLog(), entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (l *blockingLog) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	l.entered <- struct{}{}
	<-l.release
	return l.MovementLog.Append(ctx, m)
}

// recordingSink guarda los eventos publicados.
type recordingSink struct {
	mu     sync.Mutex
	events []ledger.MovementCommitted
	err    error
}

func (s *recordingSink) Publish(_ context.Context, e ledger.MovementCommitted) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// variantBlockingLog retiene sólo los Append de una variante hasta que se cierre release.
type variantBlockingLog struct {
	*memory.MovementLog
	variantID string
	entered   chan struct{}
	release   chan struct{}
}

func newVariantBlockingLog(variantID string) *variantBlockingLog {
	return &variantBlockingLog{
		MovementLog: memory.NewMovementLog(), variantID: variantID,
		entered: make(chan struct{}, 8), release: make(chan struct{}),
	}
}

func (l *variantBlockingLog) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	if m.VariantID == l.variantID {
		l.entered <- struct{}{}
		<-l.release
	}
	return l.MovementLog.Append(ctx, m)
}

// roundingLog guarda los costos con la escala de la columna unit_cost, como Postgres.
type roundingLog struct {
	*memory.MovementLog
}

func (l *roundingLog) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	stored := *m
	switch b := stored.Body.(type) {
	case entity.In:
		b.UnitCost = b.UnitCost.Round(entity.CostDecimals)
		stored.Body = b
	case entity.Adjust:
		if b.UnitCost != nil {
			cost := b.UnitCost.Round(entity.CostDecimals)
			b.UnitCost = &cost
			stored.Body = b
		}
	}
	id, err := l.MovementLog.Append(ctx, &stored)
	m.ID = stored.ID
	return id, err
}

// pausingProducts detiene la primera lectura de una variante, ya resuelta, hasta que se cierre resume.
type pausingProducts struct {
	*memory.ProductRepo
	variantID string
	first     atomic.Bool
	paused    chan struct{}
	resume    chan struct{}
}

func (p *pausingProducts) GetVariant(ctx context.Context, id string) (*entity.Variant, error) {
	v, err := p.ProductRepo.GetVariant(ctx, id)
	if id == p.variantID && p.first.CompareAndSwap(false, true) {
		close(p.paused)
		<-p.resume
	}
	return v, err
}

// Package memory implementa los puertos de persistencia en memoria (desarrollo y tests).
package memory

import (
	"context"
	"iter"
	"sort"
	"sync"

	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.MovementLog = (*MovementLog)(nil)

// MovementLog kardex append-only en memoria. El id lo asigna un contador serializado por mu.
type MovementLog struct {
	mu        sync.RWMutex
	movements []entity.Movement
	nextID    int64
}

// NewMovementLog crea un log vacío.
func NewMovementLog() *MovementLog {
	return &MovementLog{nextID: 1}
}

// Append asigna el id y anexa el movimiento. Nunca reordena ni borra.
func (l *MovementLog) Append(ctx context.Context, movement *entity.Movement) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := *movement
	if adj, ok := stored.Body.(entity.Adjust); ok && adj.UnitCost != nil {
		cost := *adj.UnitCost
		adj.UnitCost = &cost
		stored.Body = adj
	}
	stored.ID = l.nextID
	l.nextID++
	l.movements = append(l.movements, stored)
	movement.ID = stored.ID
	return stored.ID, nil
}

// Replay recorre los movimientos en orden de id. Cada range toma la longitud vigente del log:
// las entradas anteriores nunca cambian, así que no hace falta copiar.
func (l *MovementLog) Replay(ctx context.Context, filter repository.ReplayFilter) iter.Seq2[entity.Movement, error] {
	return func(yield func(entity.Movement, error) bool) {
		l.mu.RLock()
		view := l.movements[:len(l.movements):len(l.movements)]
		l.mu.RUnlock()

		start := sort.Search(len(view), func(i int) bool { return view[i].ID > filter.AfterID })
		for _, m := range view[start:] {
			if err := ctx.Err(); err != nil {
				yield(entity.Movement{}, err)
				return
			}
			if filter.VariantID != "" && m.VariantID != filter.VariantID {
				continue
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}

// LastID id del último movimiento.
func (l *MovementLog) LastID(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextID - 1, nil
}

// Len cantidad de movimientos registrados.
func (l *MovementLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.movements)
}

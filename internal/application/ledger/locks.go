package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/kardex/internal/domain"
)

// lockTable exclusión mutua por variante. Cada variante tiene un canal de capacidad 1:
// enviar es tomar el lock y recibir es liberarlo, lo que permite esperar con contexto y timeout.
// No hay lock global: variantes distintas avanzan en paralelo.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

func (t *lockTable) lane(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[key] = ch
	}
	return ch
}

// Acquire toma el lock de la variante. timeout <= 0 espera solo lo que permita ctx.
// Devuelve ErrConcurrencyTimeout si no se obtiene a tiempo; en ese caso no hubo ningún cambio.
func (t *lockTable) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	ch := t.lane(key)
	var once sync.Once
	unlock := func() { once.Do(func() { <-ch }) }

	select {
	case ch <- struct{}{}:
		return unlock, nil
	default:
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case ch <- struct{}{}:
		return unlock, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: variante %s: %v", domain.ErrConcurrencyTimeout, key, ctx.Err())
	case <-expired:
		return nil, fmt.Errorf("%w: variante %s tras %s", domain.ErrConcurrencyTimeout, key, timeout)
	}
}

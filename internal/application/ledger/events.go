package ledger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

// MovementCommitted evento emitido tras registrar un movimiento en el kardex.
type MovementCommitted struct {
	Movement entity.Movement
	Variant  entity.Variant
}

// EventSink destino externo de eventos (ej. Redis pub/sub). Se invoca fuera del lock de la variante.
type EventSink interface {
	Publish(ctx context.Context, event MovementCommitted) error
}

// Subscription suscripción en proceso a los eventos de commit.
// Si el consumidor no lee a tiempo, los eventos se descartan (el snapshot sigue como respaldo).
type Subscription struct {
	C      <-chan MovementCommitted
	id     int
	broker *broker
}

// Close cancela la suscripción y cierra el canal.
func (s *Subscription) Close() { s.broker.unsubscribe(s.id) }

type broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan MovementCommitted
	log    zerolog.Logger
}

func newBroker(log zerolog.Logger) *broker {
	return &broker{subs: make(map[int]chan MovementCommitted), log: log}
}

func (b *broker) subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan MovementCommitted, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[b.nextID] = ch
	return &Subscription{C: ch, id: b.nextID, broker: b}
}

func (b *broker) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// notify envío no bloqueante a todos los suscriptores.
func (b *broker) notify(event MovementCommitted) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.log.Warn().
				Int("subscriber", id).
				Int64("movement_id", event.Movement.ID).
				Msg("suscriptor lento, evento descartado")
		}
	}
}

func (b *broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/ledger"
)

var _ ledger.EventSink = (*Publisher)(nil)

// Publisher EventSink que publica cada movimiento registrado como JSON en un canal.
type Publisher struct {
	rdb     goredis.UniversalClient
	channel string
}

// NewPublisher construye el publicador.
func NewPublisher(rdb goredis.UniversalClient, channel string) *Publisher {
	return &Publisher{rdb: rdb, channel: channel}
}

// Publish serializa el evento y lo publica. No reintenta: el snapshot es el respaldo de los consumidores.
func (p *Publisher) Publish(ctx context.Context, event ledger.MovementCommitted) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}

// EncodeEvent forma en el cable de un evento de commit.
func EncodeEvent(event ledger.MovementCommitted) ([]byte, error) {
	payload, err := json.Marshal(dto.FromEvent(event))
	if err != nil {
		return nil, fmt.Errorf("marshal evento: %w", err)
	}
	return payload, nil
}

// DecodeEvent inverso de EncodeEvent.
func DecodeEvent(payload []byte) (dto.MovementEventDTO, error) {
	var ev dto.MovementEventDTO
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal evento: %w", err)
	}
	return ev, nil
}

package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/kardex/internal/application/dto"
)

// Watch se suscribe al canal y entrega cada evento a fn hasta que ctx se cancele.
// Los mensajes que no se pueden decodificar se registran y se descartan.
func Watch(ctx context.Context, rdb goredis.UniversalClient, channel string, log zerolog.Logger, fn func(dto.MovementEventDTO)) error {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("evento inválido")
				continue
			}
			fn(ev)
		}
	}
}

package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

// Start reconstruye la proyección: carga el último checkpoint (si hay) y aplica la cola del
// kardex posterior a él. Debe llamarse antes de aceptar movimientos.
func (s *Service) Start(ctx context.Context) error {
	started := time.Now()
	var afterID int64
	if s.checkpoints != nil {
		cp, err := s.checkpoints.Latest(ctx)
		if err != nil {
			return fmt.Errorf("cargar checkpoint: %w", err)
		}
		if cp != nil {
			for _, pos := range cp.Positions {
				s.projection.Publish(pos)
			}
			afterID = cp.LastMovementID
			s.logger.Info().
				Int64("last_movement_id", cp.LastMovementID).
				Int("variants", len(cp.Positions)).
				Msg("checkpoint cargado")
		}
	}

	n := 0
	for m, err := range s.log.Replay(ctx, repository.ReplayFilter{AfterID: afterID}) {
		if err != nil {
			return fmt.Errorf("reproducir kardex: %w", err)
		}
		// Un checkpoint puede reflejar movimientos posteriores a su cabeza.
		if m.ID <= s.projection.Position(m.VariantID).LastMovementID {
			continue
		}
		if _, err := s.projection.Apply(m); err != nil {
			return fmt.Errorf("movimiento %d no aplica en arranque: %w", m.ID, err)
		}
		n++
	}

	s.logger.Info().
		Int64("after_id", afterID).
		Int("movements", n).
		Dur("elapsed", time.Since(started)).
		Msg("proyección lista")
	return nil
}

// Checkpoint persiste la proyección junto con la cabeza del kardex leída al comenzar.
// No detiene el servicio: cada posición se copia bajo el lock de su variante, así que incluye
// todo movimiento de esa variante con id <= cabeza (y quizá algunos posteriores, que Start
// reconoce por LastMovementID y no reaplica).
func (s *Service) Checkpoint(ctx context.Context) error {
	if s.checkpoints == nil {
		return nil
	}

	head, err := s.log.LastID(ctx)
	if err != nil {
		return fmt.Errorf("último movimiento: %w", err)
	}
	ids, err := s.checkpointTargets(ctx)
	if err != nil {
		return err
	}

	positions := make([]inventory.Position, 0, len(ids))
	for _, id := range ids {
		unlock, err := s.locks.Acquire(ctx, id, s.cfg.LockTimeout)
		if err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
		pos := s.projection.Position(id)
		unlock()
		if pos.LastMovementID > 0 {
			positions = append(positions, pos)
		}
	}

	cp := &repository.Checkpoint{
		LastMovementID: head,
		Positions:      positions,
		CreatedAt:      s.clock(),
	}
	if err := s.checkpoints.Save(ctx, cp); err != nil {
		return fmt.Errorf("guardar checkpoint: %w", err)
	}
	s.logger.Info().Int64("last_movement_id", head).Int("variants", len(positions)).Msg("checkpoint guardado")
	return nil
}

// checkpointTargets variantes del catálogo más las que sólo existen en la proyección.
// Una variante cuyo primer movimiento está en curso ya figura en el catálogo.
func (s *Service) checkpointTargets(ctx context.Context) ([]string, error) {
	variants, err := s.products.ListVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar variantes: %w", err)
	}
	seen := make(map[string]struct{}, len(variants))
	ids := make([]string, 0, len(variants))
	for _, v := range variants {
		seen[v.ID] = struct{}{}
		ids = append(ids, v.ID)
	}
	for _, id := range s.projection.VariantIDs() {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Close guarda un checkpoint final y cierra las suscripciones.
func (s *Service) Close(ctx context.Context) error {
	err := s.Checkpoint(ctx)
	s.broker.closeAll()
	return err
}

package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

// RebuildOptions controla la reconstrucción desde el kardex.
type RebuildOptions struct {
	// Force reemplaza el estado vivo con el reconstruido aunque haya diferencias.
	Force bool
	// DryRun solo compara; nunca toca la proyección.
	DryRun bool
}

// RebuildReport resultado de una reconstrucción.
type RebuildReport struct {
	Variants  int
	Movements int
	Drifts    []domain.Drift
	Replaced  bool
}

// RebuildFromLog reproduce el kardex de una variante (o de todas si variantID es vacío) y lo
// compara con el estado vivo. Si hay diferencias devuelve *domain.DriftDetectedError junto al
// reporte; sin Force el estado vivo se conserva para diagnóstico.
func (s *Service) RebuildFromLog(ctx context.Context, variantID string, opts RebuildOptions) (*RebuildReport, error) {
	ids, err := s.rebuildTargets(ctx, variantID)
	if err != nil {
		return nil, err
	}

	report := &RebuildReport{Variants: len(ids)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.RebuildLimit)
	for _, id := range ids {
		g.Go(func() error {
			n, drifts, replaced, err := s.rebuildVariant(gctx, id, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			report.Movements += n
			report.Drifts = append(report.Drifts, drifts...)
			report.Replaced = report.Replaced || replaced
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(report.Drifts, func(i, j int) bool { return report.Drifts[i].VariantID < report.Drifts[j].VariantID })

	ev := s.logger.Info()
	if len(report.Drifts) > 0 {
		ev = s.logger.Warn()
	}
	ev.Int("variants", report.Variants).
		Int("movements", report.Movements).
		Int("drifts", len(report.Drifts)).
		Bool("replaced", report.Replaced).
		Bool("dry_run", opts.DryRun).
		Msg("reconstrucción desde kardex")

	if len(report.Drifts) > 0 {
		return report, &domain.DriftDetectedError{Drifts: report.Drifts}
	}
	return report, nil
}

// Verify compara proyección y kardex sin modificar nada.
func (s *Service) Verify(ctx context.Context, variantID string) (*RebuildReport, error) {
	return s.RebuildFromLog(ctx, variantID, RebuildOptions{DryRun: true})
}

// rebuildTargets variantes a reconstruir: catálogo ∪ proyección.
func (s *Service) rebuildTargets(ctx context.Context, variantID string) ([]string, error) {
	if variantID != "" {
		v, err := s.products.GetVariant(ctx, variantID)
		if err != nil {
			return nil, fmt.Errorf("obtener variante: %w", err)
		}
		if v == nil {
			return nil, domain.UnknownEntity("variante", variantID)
		}
		return []string{variantID}, nil
	}

	variants, err := s.products.ListVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar variantes: %w", err)
	}
	set := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		set[v.ID] = struct{}{}
	}
	for _, id := range s.projection.VariantIDs() {
		set[id] = struct{}{}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// rebuildVariant reproduce bajo el lock de la variante, así ningún commit se cuela entre la
// lectura del kardex y la comparación.
func (s *Service) rebuildVariant(ctx context.Context, variantID string, opts RebuildOptions) (int, []domain.Drift, bool, error) {
	unlock, err := s.locks.Acquire(ctx, variantID, s.cfg.LockTimeout)
	if err != nil {
		return 0, nil, false, err
	}
	defer unlock()

	replayed, n, err := s.replayVariant(ctx, variantID)
	if err != nil {
		return 0, nil, false, err
	}
	drifts := s.projection.Position(variantID).Diff(replayed)
	if opts.DryRun || (len(drifts) > 0 && !opts.Force) {
		return n, drifts, false, nil
	}
	if len(drifts) > 0 {
		s.projection.Publish(replayed)
		s.logger.Warn().Str("variant_id", variantID).Int("drifts", len(drifts)).Msg("estado vivo reemplazado por el reconstruido")
		return n, drifts, true, nil
	}
	return n, nil, false, nil
}

// replayVariant aplica en orden todos los movimientos de la variante desde el estado inicial.
func (s *Service) replayVariant(ctx context.Context, variantID string) (inventory.Position, int, error) {
	folder := s.projection.Folder()
	pos := inventory.NewPosition(variantID)
	n := 0
	for m, err := range s.log.Replay(ctx, repository.ReplayFilter{VariantID: variantID}) {
		if err != nil {
			return inventory.Position{}, 0, fmt.Errorf("reproducir kardex de %s: %w", variantID, err)
		}
		next, err := folder.Fold(pos, m)
		if err != nil {
			return inventory.Position{}, 0, fmt.Errorf("movimiento %d no aplica en reproducción: %w", m.ID, err)
		}
		pos = next
		n++
	}
	return pos, n, nil
}

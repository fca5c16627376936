// Package ledger implementa el servicio del kardex: serializa los movimientos por variante,
// los registra en el log y mantiene la proyección de stock y costo.
//
// Flujo de Submit:
//
//	validación estática → lock de la variante → re-validación contra la proyección vigente
//	→ append al kardex → fold (stock + costo) → publicación → liberar lock → eventos
//
// Las lecturas (Snapshot, Valuation, Variant) nunca reproducen el log: leen la proyección.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

// Config parámetros del servicio.
type Config struct {
	LockTimeout  time.Duration // espera máxima por el lock de una variante
	CostScale    int32         // decimales del costo promedio
	SinkTimeout  time.Duration // tiempo máximo para publicar en el EventSink
	RebuildLimit int           // variantes reconstruidas en paralelo
}

// Deps dependencias del servicio. Checkpoints y Sink son opcionales.
type Deps struct {
	Log         repository.MovementLog
	Products    repository.ProductRepository
	Warehouses  repository.WarehouseRepository
	Checkpoints repository.CheckpointStore
	Sink        EventSink
	Clock       func() time.Time
	Logger      zerolog.Logger
}

// MovementDraft solicitud de movimiento. Body es uno de entity.In, Out, Adjust, Transfer, Warranty.
type MovementDraft struct {
	VariantID     string
	TransactionID string
	Note          string
	Body          entity.MovementBody
}

// Service fachada del kardex.
type Service struct {
	log         repository.MovementLog
	products    repository.ProductRepository
	warehouses  repository.WarehouseRepository
	checkpoints repository.CheckpointStore
	sink        EventSink
	clock       func() time.Time
	logger      zerolog.Logger
	cfg         Config

	projection *inventory.Projection
	locks      *lockTable
	broker     *broker
}

// NewService construye el servicio con una proyección vacía; llamar Start antes de usarlo.
func NewService(deps Deps, cfg Config) *Service {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 2 * time.Second
	}
	if cfg.CostScale <= 0 {
		cfg.CostScale = inventory.DefaultCostScale
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 2 * time.Second
	}
	if cfg.RebuildLimit <= 0 {
		cfg.RebuildLimit = 4
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger.With().Str("component", "ledger").Logger()
	return &Service{
		log:         deps.Log,
		products:    deps.Products,
		warehouses:  deps.Warehouses,
		checkpoints: deps.Checkpoints,
		sink:        deps.Sink,
		clock:       clock,
		logger:      logger,
		cfg:         cfg,
		projection:  inventory.NewProjection(inventory.NewFolder(cfg.CostScale)),
		locks:       newLockTable(),
		broker:      newBroker(logger),
	}
}

// Projection acceso de solo lectura a la proyección (Quantity, TotalQuantity, UnitCost).
func (s *Service) Projection() *inventory.Projection { return s.projection }

// Subscribe registra un suscriptor de eventos de commit.
func (s *Service) Subscribe(buffer int) *Subscription { return s.broker.subscribe(buffer) }

// Submit valida y registra un movimiento, devolviendo la variante actualizada.
//
// Errores: ErrInvalidMovement, ErrUnknownEntity, *InsufficientStockError,
// *InsufficientAllocationError, ErrConcurrencyTimeout, *LogAppendError.
// Ningún efecto parcial es visible: si algo falla, la variante queda igual.
func (s *Service) Submit(ctx context.Context, draft MovementDraft) (*entity.Variant, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	variant, err := s.products.GetVariant(ctx, draft.VariantID)
	if err != nil {
		return nil, fmt.Errorf("obtener variante: %w", err)
	}
	if variant == nil {
		return nil, domain.UnknownEntity("variante", draft.VariantID)
	}
	if err := s.checkWarehouses(ctx, draft.Body); err != nil {
		return nil, err
	}

	unlock, err := s.locks.Acquire(ctx, draft.VariantID, s.cfg.LockTimeout)
	if err != nil {
		s.logger.Warn().Err(err).Str("variant_id", draft.VariantID).Msg("lock de variante no obtenido")
		return nil, err
	}
	event, err := s.commitLocked(ctx, variant.ID, draft)
	unlock()
	if err != nil {
		ev := s.logger.Error()
		if IsBusinessRejection(err) {
			ev = s.logger.Debug()
		}
		ev.Err(err).Str("variant_id", draft.VariantID).Msg("movimiento rechazado")
		return nil, err
	}

	s.logger.Info().
		Int64("movement_id", event.Movement.ID).
		Str("variant_id", event.Movement.VariantID).
		Str("sku", event.Movement.SKU).
		Str("type", string(event.Movement.Type())).
		Int("qty", event.Movement.Body.Quantity()).
		Msg("movimiento registrado")

	s.publishExternal(ctx, event)
	out := event.Variant
	return &out, nil
}

// commitLocked re-valida contra la posición vigente, anexa al log y publica el fold.
// La variante se relee bajo el lock: un DeleteVariant concurrente pudo eliminarla.
// Orden append → fold: si el append falla no se toca la proyección.
func (s *Service) commitLocked(ctx context.Context, variantID string, draft MovementDraft) (MovementCommitted, error) {
	variant, err := s.products.GetVariant(ctx, variantID)
	if err != nil {
		return MovementCommitted{}, fmt.Errorf("obtener variante: %w", err)
	}
	if variant == nil {
		return MovementCommitted{}, domain.UnknownEntity("variante", variantID)
	}
	current := s.projection.Position(variant.ID)
	body, err := resolveBody(current, draft.Body)
	if err != nil {
		return MovementCommitted{}, err
	}

	txID := draft.TransactionID
	if txID == "" {
		txID = uuid.New().String()
	}
	mov := entity.Movement{
		TransactionID: txID,
		Timestamp:     s.clock(),
		VariantID:     variant.ID,
		SKU:           variant.SKU,
		Note:          draft.Note,
		Body:          body,
	}
	next, err := s.projection.Folder().Fold(current, mov)
	if err != nil {
		return MovementCommitted{}, err
	}

	id, err := s.log.Append(ctx, &mov)
	if err != nil {
		return MovementCommitted{}, &domain.LogAppendError{Err: err}
	}
	mov.ID = id
	next.LastMovementID = id
	s.projection.Publish(next)

	event := MovementCommitted{Movement: mov, Variant: mergeVariant(*variant, next)}
	s.broker.notify(event)
	return event, nil
}

func (s *Service) publishExternal(ctx context.Context, event MovementCommitted) {
	if s.sink == nil {
		return
	}
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SinkTimeout)
	defer cancel()
	if err := s.sink.Publish(sinkCtx, event); err != nil {
		s.logger.Warn().Err(err).Int64("movement_id", event.Movement.ID).Msg("publicar evento externo")
	}
}

// Variant devuelve la variante con su stock y costo vigentes.
func (s *Service) Variant(ctx context.Context, id string) (*entity.Variant, error) {
	v, err := s.products.GetVariant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener variante: %w", err)
	}
	if v == nil {
		return nil, domain.UnknownEntity("variante", id)
	}
	out := mergeVariant(*v, s.projection.Position(id))
	return &out, nil
}

// DeleteVariant elimina la variante del catálogo solo si no tiene stock.
// Se hace bajo el lock de la variante para que ninguna entrada concurrente la deje con unidades huérfanas.
// Sus movimientos permanecen en el kardex.
func (s *Service) DeleteVariant(ctx context.Context, id string) error {
	v, err := s.products.GetVariant(ctx, id)
	if err != nil {
		return fmt.Errorf("obtener variante: %w", err)
	}
	if v == nil {
		return domain.UnknownEntity("variante", id)
	}
	unlock, err := s.locks.Acquire(ctx, id, s.cfg.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	if total := s.projection.TotalQuantity(id); total > 0 {
		return fmt.Errorf("%w: %d unidades", domain.ErrVariantHasStock, total)
	}
	if err := s.products.DeleteVariant(ctx, id); err != nil {
		return fmt.Errorf("eliminar variante: %w", err)
	}
	s.projection.Reset(id)
	s.logger.Info().Str("variant_id", id).Str("sku", v.SKU).Msg("variante eliminada")
	return nil
}

// ── Validación ────────────────────────────────────────────────────────────────

// validateDraft rechaza borradores mal formados antes de tomar cualquier lock.
func validateDraft(d MovementDraft) error {
	if d.VariantID == "" {
		return domain.InvalidMovement("variant_id es requerido")
	}
	if d.Body == nil {
		return domain.InvalidMovement("tipo de movimiento requerido")
	}
	switch b := d.Body.(type) {
	case entity.In:
		if b.To == "" {
			return domain.InvalidMovement("entrada requiere bodega destino")
		}
		if err := checkQty(b.Qty); err != nil {
			return err
		}
		if err := checkCost(b.UnitCost); err != nil {
			return err
		}
	case entity.Out:
		if b.From == "" {
			return domain.InvalidMovement("salida requiere bodega origen")
		}
		if err := checkQty(b.Qty); err != nil {
			return err
		}
	case entity.Adjust:
		if b.Warehouse == "" {
			return domain.InvalidMovement("ajuste requiere bodega")
		}
		switch b.Mode {
		case entity.AdjustSet:
			if b.Qty < 0 || b.Qty > entity.MaxQuantity {
				return domain.InvalidMovement("conteo físico fuera de rango (0..%d)", entity.MaxQuantity)
			}
		case entity.AdjustIncrease, entity.AdjustDecrease:
			if err := checkQty(b.Qty); err != nil {
				return err
			}
		default:
			return domain.InvalidMovement("modo de ajuste desconocido %q", b.Mode)
		}
		if b.UnitCost != nil {
			if err := checkCost(*b.UnitCost); err != nil {
				return err
			}
		}
	case entity.Transfer:
		if b.From == "" || b.To == "" {
			return domain.InvalidMovement("traslado requiere bodega origen y destino")
		}
		if b.From == b.To {
			return domain.InvalidMovement("traslado con origen y destino iguales")
		}
		if err := checkQty(b.Qty); err != nil {
			return err
		}
	case entity.Warranty:
		if err := checkQty(b.Qty); err != nil {
			return err
		}
	default:
		return domain.InvalidMovement("tipo de movimiento desconocido %T", d.Body)
	}
	return nil
}

func checkQty(qty int) error {
	if qty <= 0 || qty > entity.MaxQuantity {
		return domain.InvalidMovement("qty fuera de rango (1..%d)", entity.MaxQuantity)
	}
	return nil
}

// checkCost el costo debe poder guardarse tal cual en el kardex: redondearlo al persistir haría
// que la reproducción difiera de la proyección viva.
func checkCost(cost decimal.Decimal) error {
	switch {
	case cost.IsNegative():
		return domain.InvalidMovement("unit_cost no puede ser negativo")
	case cost.GreaterThanOrEqual(entity.MaxUnitCost):
		return domain.InvalidMovement("unit_cost excede el máximo admitido")
	case !cost.Equal(cost.Truncate(entity.CostDecimals)):
		return domain.InvalidMovement("unit_cost admite a lo sumo %d decimales", entity.CostDecimals)
	}
	return nil
}

func (s *Service) checkWarehouses(ctx context.Context, body entity.MovementBody) error {
	var ids []string
	switch b := body.(type) {
	case entity.In:
		ids = []string{b.To}
	case entity.Out:
		ids = []string{b.From}
	case entity.Adjust:
		ids = []string{b.Warehouse}
	case entity.Transfer:
		ids = []string{b.From, b.To}
	}
	for _, id := range ids {
		wh, err := s.warehouses.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener bodega: %w", err)
		}
		if wh == nil {
			return domain.UnknownEntity("bodega", id)
		}
	}
	return nil
}

// resolveBody convierte un ajuste "set" (conteo físico) en un delta neto contra la posición vigente.
func resolveBody(current inventory.Position, body entity.MovementBody) (entity.MovementBody, error) {
	adj, ok := body.(entity.Adjust)
	if !ok || adj.Mode != entity.AdjustSet {
		return body, nil
	}
	delta := adj.Qty - current.Quantity(adj.Warehouse)
	switch {
	case delta > 0:
		adj.Mode, adj.Qty = entity.AdjustIncrease, delta
	case delta < 0:
		adj.Mode, adj.Qty, adj.UnitCost = entity.AdjustDecrease, -delta, nil
	default:
		return nil, domain.InvalidMovement("el conteo coincide con el stock de la bodega %s", adj.Warehouse)
	}
	return adj, nil
}

// mergeVariant combina atributos de catálogo con la posición derivada del kardex.
func mergeVariant(v entity.Variant, p inventory.Position) entity.Variant {
	v.StockByWarehouse = make(map[string]int, len(p.Stock))
	for w, q := range p.Stock {
		v.StockByWarehouse[w] = q
	}
	v.UnitCost = p.UnitCost
	v.MainAllocationQty = p.MainQty
	v.WarrantyAllocationQty = p.WarrantyQty
	if p.LastMovementAt.After(v.UpdatedAt) {
		v.UpdatedAt = p.LastMovementAt
	}
	return v
}

// IsBusinessRejection indica si el error es un rechazo de negocio (no una falla del sistema).
func IsBusinessRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidMovement) ||
		errors.Is(err, domain.ErrUnknownEntity) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInsufficientMainAllocation)
}

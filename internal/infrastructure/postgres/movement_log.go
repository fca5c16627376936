package postgres

import (
	"context"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.MovementLog = (*MovementLog)(nil)

// replayBatch filas leídas por consulta durante una reproducción (paginación por id).
const replayBatch = 1000

// MovementLog kardex sobre PostgreSQL. El id lo asigna el BIGSERIAL de inventory_movements.
type MovementLog struct {
	q Querier
}

// NewMovementLog construye el adaptador. Pasar pool o tx (Querier).
func NewMovementLog(q Querier) *MovementLog {
	return &MovementLog{q: q}
}

const movementColumns = `id, transaction_id, occurred_at, variant_id, sku, type, quantity,
	from_warehouse_id, to_warehouse_id, unit_cost, adjust_mode, from_warranty, note`

// Append inserta el movimiento y devuelve el id asignado.
func (l *MovementLog) Append(ctx context.Context, movement *entity.Movement) (int64, error) {
	r := movement.ToRecord()
	var id int64
	err := l.q.QueryRow(ctx, `
		INSERT INTO inventory_movements (transaction_id, occurred_at, variant_id, sku, type, quantity,
			from_warehouse_id, to_warehouse_id, unit_cost, adjust_mode, from_warranty, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		r.TransactionID, r.Timestamp, r.VariantID, r.SKU, string(r.Type), r.Qty,
		nullString(r.FromWarehouse), nullString(r.ToWarehouse), r.UnitCost, nullString(string(r.AdjustMode)),
		r.FromWarranty, r.Note,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert inventory movement: %w", err)
	}
	movement.ID = id
	return id, nil
}

// Replay lee el kardex por páginas de replayBatch filas en orden de id; cada range vuelve a consultar.
func (l *MovementLog) Replay(ctx context.Context, filter repository.ReplayFilter) iter.Seq2[entity.Movement, error] {
	return func(yield func(entity.Movement, error) bool) {
		after := filter.AfterID
		for {
			page, err := l.page(ctx, filter.VariantID, after)
			if err != nil {
				yield(entity.Movement{}, err)
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < replayBatch {
				return
			}
			after = page[len(page)-1].ID
		}
	}
}

func (l *MovementLog) page(ctx context.Context, variantID string, afterID int64) ([]entity.Movement, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if variantID == "" {
		rows, err = l.q.Query(ctx, `SELECT `+movementColumns+`
			FROM inventory_movements WHERE id > $1 ORDER BY id LIMIT $2`, afterID, replayBatch)
	} else {
		rows, err = l.q.Query(ctx, `SELECT `+movementColumns+`
			FROM inventory_movements WHERE variant_id = $1 AND id > $2 ORDER BY id LIMIT $3`, variantID, afterID, replayBatch)
	}
	if err != nil {
		return nil, fmt.Errorf("replay inventory movements: %w", err)
	}
	defer rows.Close()

	page := make([]entity.Movement, 0, replayBatch)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		page = append(page, m)
	}
	return page, rows.Err()
}

// LastID id del último movimiento (0 si el kardex está vacío).
func (l *MovementLog) LastID(ctx context.Context) (int64, error) {
	var id int64
	if err := l.q.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM inventory_movements`).Scan(&id); err != nil {
		return 0, fmt.Errorf("last movement id: %w", err)
	}
	return id, nil
}

func scanMovement(row pgx.Row) (entity.Movement, error) {
	var (
		r              entity.MovementRecord
		typ            string
		from, to, mode *string
	)
	if err := row.Scan(&r.ID, &r.TransactionID, &r.Timestamp, &r.VariantID, &r.SKU, &typ, &r.Qty,
		&from, &to, &r.UnitCost, &mode, &r.FromWarranty, &r.Note); err != nil {
		return entity.Movement{}, fmt.Errorf("scan inventory movement: %w", err)
	}
	r.Type = entity.MovementType(typ)
	r.FromWarehouse = deref(from)
	r.ToWarehouse = deref(to)
	r.AdjustMode = entity.AdjustMode(deref(mode))
	return r.ToMovement()
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.CheckpointStore = (*CheckpointStore)(nil)

// keepCheckpoints cantidad de checkpoints que se conservan.
const keepCheckpoints = 5

// CheckpointStore checkpoints de la proyección en ledger_checkpoints (posiciones en JSONB).
type CheckpointStore struct {
	q Querier
}

// NewCheckpointStore construye el adaptador.
func NewCheckpointStore(q Querier) *CheckpointStore {
	return &CheckpointStore{q: q}
}

type positionJSON struct {
	VariantID      string          `json:"variant_id"`
	Stock          map[string]int  `json:"stock"`
	MainQty        int             `json:"main_qty"`
	WarrantyQty    int             `json:"warranty_qty"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	LastMovementID int64           `json:"last_movement_id"`
	LastMovementAt time.Time       `json:"last_movement_at"`
}

// Save inserta el checkpoint y poda los más antiguos.
func (s *CheckpointStore) Save(ctx context.Context, cp *repository.Checkpoint) error {
	positions := make([]positionJSON, 0, len(cp.Positions))
	for _, p := range cp.Positions {
		positions = append(positions, positionJSON{
			VariantID:      p.VariantID,
			Stock:          p.Stock,
			MainQty:        p.MainQty,
			WarrantyQty:    p.WarrantyQty,
			UnitCost:       p.UnitCost,
			LastMovementID: p.LastMovementID,
			LastMovementAt: p.LastMovementAt,
		})
	}
	payload, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	return runInTx(ctx, s.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO ledger_checkpoints (last_movement_id, positions, created_at) VALUES ($1, $2, $3)`,
			cp.LastMovementID, string(payload), cp.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert checkpoint: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			DELETE FROM ledger_checkpoints
			WHERE id NOT IN (SELECT id FROM ledger_checkpoints ORDER BY id DESC LIMIT $1)`,
			keepCheckpoints,
		); err != nil {
			return fmt.Errorf("prune checkpoints: %w", err)
		}
		return nil
	})
}

// Latest devuelve el checkpoint más reciente o nil.
func (s *CheckpointStore) Latest(ctx context.Context) (*repository.Checkpoint, error) {
	var (
		cp      repository.Checkpoint
		payload []byte
	)
	err := s.q.QueryRow(ctx, `
		SELECT last_movement_id, positions, created_at FROM ledger_checkpoints ORDER BY id DESC LIMIT 1`,
	).Scan(&cp.LastMovementID, &payload, &cp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}

	var positions []positionJSON
	if err := json.Unmarshal(payload, &positions); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	for _, p := range positions {
		pos := inventory.NewPosition(p.VariantID)
		for w, q := range p.Stock {
			pos.Stock[w] = q
		}
		pos.MainQty = p.MainQty
		pos.WarrantyQty = p.WarrantyQty
		pos.UnitCost = p.UnitCost
		pos.LastMovementID = p.LastMovementID
		pos.LastMovementAt = p.LastMovementAt
		cp.Positions = append(cp.Positions, pos)
	}
	return &cp, nil
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex/internal/domain/inventory"
)

// Checkpoint foto de la proyección consistente con el kardex hasta LastMovementID.
type Checkpoint struct {
	LastMovementID int64
	Positions      []inventory.Position
	CreatedAt      time.Time
}

// CheckpointStore persiste el último checkpoint para acelerar el arranque.
type CheckpointStore interface {
	Save(ctx context.Context, checkpoint *Checkpoint) error
	// Latest devuelve nil si no hay checkpoint.
	Latest(ctx context.Context) (*Checkpoint, error)
}

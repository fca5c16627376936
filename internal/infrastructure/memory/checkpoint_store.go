package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore guarda solo el último checkpoint.
type CheckpointStore struct {
	mu     sync.Mutex
	latest *repository.Checkpoint
}

// NewCheckpointStore crea el store vacío.
func NewCheckpointStore() *CheckpointStore { return &CheckpointStore{} }

func (s *CheckpointStore) Save(_ context.Context, checkpoint *repository.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = cloneCheckpoint(checkpoint)
	return nil
}

func (s *CheckpointStore) Latest(_ context.Context) (*repository.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil, nil
	}
	return cloneCheckpoint(s.latest), nil
}

func cloneCheckpoint(c *repository.Checkpoint) *repository.Checkpoint {
	out := &repository.Checkpoint{LastMovementID: c.LastMovementID, CreatedAt: c.CreatedAt}
	out.Positions = make([]inventory.Position, len(c.Positions))
	for i, p := range c.Positions {
		out.Positions[i] = p.Clone()
	}
	return out
}

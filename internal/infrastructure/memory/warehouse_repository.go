package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	mu         sync.RWMutex
	warehouses map[string]entity.Warehouse
}

// NewWarehouseRepository crea el repositorio, opcionalmente con bodegas iniciales.
func NewWarehouseRepository(seed ...entity.Warehouse) *WarehouseRepo {
	r := &WarehouseRepo{warehouses: make(map[string]entity.Warehouse, len(seed))}
	for _, w := range seed {
		r.warehouses[w.ID] = w
	}
	return r
}

func (r *WarehouseRepo) Upsert(_ context.Context, warehouse *entity.Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) List(_ context.Context) ([]*entity.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		c := w
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

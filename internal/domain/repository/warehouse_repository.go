package repository

import (
	"context"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para bodegas (dato de referencia).
type WarehouseRepository interface {
	Upsert(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context) ([]*entity.Warehouse, error)
}

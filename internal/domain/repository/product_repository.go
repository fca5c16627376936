package repository

import (
	"context"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos y sus variantes (DIP).
// Solo guarda atributos de catálogo; stock y costo viven en el kardex.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error

	AddVariant(ctx context.Context, variant *entity.Variant) error
	GetVariant(ctx context.Context, id string) (*entity.Variant, error)
	GetVariantBySKU(ctx context.Context, sku string) (*entity.Variant, error)
	UpdateVariant(ctx context.Context, variant *entity.Variant) error
	DeleteVariant(ctx context.Context, id string) error
	ListVariants(ctx context.Context) ([]*entity.Variant, error)
}

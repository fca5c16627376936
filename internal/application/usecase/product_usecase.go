package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

// VariantLedger lo que el catálogo necesita del kardex: lecturas con stock vigente y
// el borrado controlado (no se elimina una variante con unidades).
type VariantLedger interface {
	Product(ctx context.Context, id string) (*entity.Product, error)
	Variant(ctx context.Context, id string) (*entity.Variant, error)
	DeleteVariant(ctx context.Context, id string) error
}

// ProductUseCase casos de uso de catálogo. UnitCost y stock se manejan vía movimientos.
type ProductUseCase struct {
	repo   repository.ProductRepository
	ledger VariantLedger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, ledger VariantLedger) *ProductUseCase {
	return &ProductUseCase{repo: repo, ledger: ledger}
}

// Create crea un producto con sus variantes. Cada variante nace sin stock y con costo 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	seen := make(map[string]struct{}, len(in.Variants))
	for _, v := range in.Variants {
		if _, dup := seen[v.SKU]; dup {
			return nil, domain.ErrDuplicateSKU
		}
		seen[v.SKU] = struct{}{}
		if err := uc.ensureSKUFree(ctx, v.SKU); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Category:     in.Category,
		Brand:        in.Brand,
		Notes:        in.Notes,
		Measurements: in.Measurements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, v := range in.Variants {
		product.Variants = append(product.Variants, newVariant(product.ID, v, now))
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, product.ID)
}

// GetByID obtiene un producto con stock y costo vigentes. nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.ledger.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	out := dto.FromProduct(*product)
	return &out, nil
}

// AddVariant agrega una variante a un producto existente.
func (uc *ProductUseCase) AddVariant(ctx context.Context, productID string, in dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.ensureSKUFree(ctx, in.SKU); err != nil {
		return nil, err
	}
	variant := newVariant(productID, in, time.Now())
	if err := uc.repo.AddVariant(ctx, &variant); err != nil {
		return nil, err
	}
	return uc.variantResponse(ctx, variant.ID)
}

// UpdateVariant actualiza atributos de catálogo. No permite modificar stock ni costo.
func (uc *ProductUseCase) UpdateVariant(ctx context.Context, id string, in dto.UpdateVariantRequest) (*dto.VariantResponse, error) {
	variant, err := uc.repo.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, nil
	}
	if in.Name != nil {
		variant.Name = *in.Name
	}
	if in.RetailPrice != nil {
		variant.RetailPrice = *in.RetailPrice
	}
	if in.WholesalePrice != nil {
		variant.WholesalePrice = *in.WholesalePrice
	}
	if in.ReorderLevel != nil {
		variant.ReorderLevel = *in.ReorderLevel
	}
	if in.Enabled != nil {
		variant.Enabled = *in.Enabled
	}
	variant.UpdatedAt = time.Now()
	if err := uc.repo.UpdateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return uc.variantResponse(ctx, id)
}

// DeleteVariant elimina la variante; se rechaza con ErrVariantHasStock si aún tiene unidades.
func (uc *ProductUseCase) DeleteVariant(ctx context.Context, id string) error {
	return uc.ledger.DeleteVariant(ctx, id)
}

func (uc *ProductUseCase) ensureSKUFree(ctx context.Context, sku string) error {
	existing, err := uc.repo.GetVariantBySKU(ctx, sku)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrDuplicateSKU
	}
	return nil
}

func (uc *ProductUseCase) variantResponse(ctx context.Context, id string) (*dto.VariantResponse, error) {
	v, err := uc.ledger.Variant(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromVariant(*v)
	return &out, nil
}

func newVariant(productID string, in dto.CreateVariantRequest, now time.Time) entity.Variant {
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	return entity.Variant{
		ID:               uuid.New().String(),
		ProductID:        productID,
		SKU:              in.SKU,
		Name:             in.Name,
		StockByWarehouse: map[string]int{},
		RetailPrice:      in.RetailPrice,
		WholesalePrice:   in.WholesalePrice,
		ReorderLevel:     in.ReorderLevel,
		Enabled:          enabled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
)

// Snapshot vista de lectura del inventario completo. Cada variante refleja su estado antes o
// después de cualquier movimiento en curso, nunca uno intermedio.
type Snapshot struct {
	Products       []entity.Product
	Warehouses     []entity.Warehouse
	LastMovementID int64
}

// Snapshot lee catálogo + proyección. No reproduce el kardex.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	warehouses, err := s.warehouses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar bodegas: %w", err)
	}
	lastID, err := s.log.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("último movimiento: %w", err)
	}

	snap := &Snapshot{
		Products:       make([]entity.Product, 0, len(products)),
		Warehouses:     make([]entity.Warehouse, 0, len(warehouses)),
		LastMovementID: lastID,
	}
	for _, p := range products {
		snap.Products = append(snap.Products, s.mergeProduct(*p))
	}
	for _, w := range warehouses {
		snap.Warehouses = append(snap.Warehouses, *w)
	}
	sort.Slice(snap.Warehouses, func(i, j int) bool { return snap.Warehouses[i].ID < snap.Warehouses[j].ID })
	return snap, nil
}

// Product devuelve el producto con sus variantes al día.
func (s *Service) Product(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	merged := s.mergeProduct(*p)
	return &merged, nil
}

// mergeProduct UpdatedAt del producto = max(almacenado, último movimiento de cualquiera de sus variantes).
func (s *Service) mergeProduct(p entity.Product) entity.Product {
	variants := make([]entity.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		merged := mergeVariant(v, s.projection.Position(v.ID))
		if merged.UpdatedAt.After(p.UpdatedAt) {
			p.UpdatedAt = merged.UpdatedAt
		}
		variants = append(variants, merged)
	}
	p.Variants = variants
	return p
}

// Variants todas las variantes del catálogo con stock y costo vigentes.
func (s *Service) Variants(ctx context.Context) ([]entity.Variant, error) {
	list, err := s.products.ListVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar variantes: %w", err)
	}
	out := make([]entity.Variant, 0, len(list))
	for _, v := range list {
		out = append(out, mergeVariant(*v, s.projection.Position(v.ID)))
	}
	return out, nil
}

// Valuation recalcula los KPIs de valorización sobre el estado vigente.
func (s *Service) Valuation(ctx context.Context) (*inventory.ValuationReport, error) {
	variants, err := s.Variants(ctx)
	if err != nil {
		return nil, err
	}
	report := inventory.Valuate(variants, s.cfg.CostScale)
	return &report, nil
}

// Head id del último movimiento registrado en el kardex (0 si está vacío).
func (s *Service) Head(ctx context.Context) (int64, error) {
	return s.log.LastID(ctx)
}

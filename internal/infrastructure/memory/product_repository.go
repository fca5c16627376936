package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo de productos y variantes en memoria. Devuelve copias, nunca punteros internos.
type ProductRepo struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
	variants map[string]*entity.Variant
	bySKU    map[string]string
}

// NewProductRepository crea el repositorio vacío.
func NewProductRepository() *ProductRepo {
	return &ProductRepo{
		products: make(map[string]*entity.Product),
		variants: make(map[string]*entity.Variant),
		bySKU:    make(map[string]string),
	}
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; ok {
		return domain.ErrInvalidInput
	}
	for _, v := range product.Variants {
		if _, dup := r.bySKU[v.SKU]; dup {
			return domain.ErrDuplicateSKU
		}
	}
	p := *product
	p.Variants = nil
	r.products[p.ID] = &p
	for i := range product.Variants {
		v := product.Variants[i]
		r.variants[v.ID] = &v
		r.bySKU[v.SKU] = v.ID
	}
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return r.withVariants(p), nil
}

func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, r.withVariants(p))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name || (list[i].Name == list[j].Name && list[i].ID < list[j].ID)
	})
	return list, nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	p := *product
	p.Variants = nil
	r.products[p.ID] = &p
	return nil
}

func (r *ProductRepo) AddVariant(_ context.Context, variant *entity.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[variant.ProductID]; !ok {
		return domain.ErrNotFound
	}
	if _, dup := r.bySKU[variant.SKU]; dup {
		return domain.ErrDuplicateSKU
	}
	v := *variant
	r.variants[v.ID] = &v
	r.bySKU[v.SKU] = v.ID
	return nil
}

func (r *ProductRepo) GetVariant(_ context.Context, id string) (*entity.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (r *ProductRepo) GetVariantBySKU(ctx context.Context, sku string) (*entity.Variant, error) {
	r.mu.RLock()
	id, ok := r.bySKU[sku]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetVariant(ctx, id)
}

func (r *ProductRepo) UpdateVariant(_ context.Context, variant *entity.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.variants[variant.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if old.SKU != variant.SKU {
		if _, dup := r.bySKU[variant.SKU]; dup {
			return domain.ErrDuplicateSKU
		}
		delete(r.bySKU, old.SKU)
		r.bySKU[variant.SKU] = variant.ID
	}
	v := *variant
	r.variants[v.ID] = &v
	return nil
}

func (r *ProductRepo) DeleteVariant(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.bySKU, v.SKU)
	delete(r.variants, id)
	return nil
}

func (r *ProductRepo) ListVariants(_ context.Context) ([]*entity.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.Variant, 0, len(r.variants))
	for _, v := range r.variants {
		c := *v
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

func (r *ProductRepo) withVariants(p *entity.Product) *entity.Product {
	c := *p
	c.Variants = nil
	for _, v := range r.variants {
		if v.ProductID == p.ID {
			c.Variants = append(c.Variants, *v)
		}
	}
	sort.Slice(c.Variants, func(i, j int) bool { return c.Variants[i].SKU < c.Variants[j].SKU })
	return &c
}

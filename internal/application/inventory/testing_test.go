package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/infrastructure/memory"
)

type seedVariant struct {
	id, sku string
	retail  string
	reorder int
	enabled bool
	qty     int
	cost    string
}

// newLedger servicio en memoria con las variantes sembradas y su stock inicial en W1.
func newLedger(t *testing.T, variants ...seedVariant) *ledger.Service {
	t.Helper()
	ctx := context.Background()
	products := memory.NewProductRepository()
	product := &entity.Product{ID: "p1", Name: "Producto"}
	for _, v := range variants {
		product.Variants = append(product.Variants, entity.Variant{
			ID: v.id, ProductID: "p1", SKU: v.sku, Name: v.sku,
			RetailPrice: decimal.RequireFromString(v.retail), ReorderLevel: v.reorder, Enabled: v.enabled,
		})
	}
	require.NoError(t, products.Create(ctx, product))

	svc := ledger.NewService(ledger.Deps{
		Log:        memory.NewMovementLog(),
		Products:   products,
		Warehouses: memory.NewWarehouseRepository(entity.Warehouse{ID: "W1"}, entity.Warehouse{ID: "W2"}),
		Logger:     zerolog.Nop(),
	}, ledger.Config{})
	require.NoError(t, svc.Start(ctx))

	for _, v := range variants {
		if v.qty == 0 {
			continue
		}
		_, err := svc.Submit(ctx, ledger.MovementDraft{VariantID: v.id, Body: entity.In{
			To: "W1", Qty: v.qty, UnitCost: decimal.RequireFromString(v.cost),
		}})
		require.NoError(t, err)
	}
	return svc
}

package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
)

func variant(id, sku string, stock map[string]int, cost string, reorder int, enabled bool) entity.Variant {
	return entity.Variant{
		ID: id, ProductID: "p1", SKU: sku, Name: sku,
		StockByWarehouse: stock, UnitCost: decimal.RequireFromString(cost),
		ReorderLevel: reorder, Enabled: enabled,
	}
}

func TestValuate(t *testing.T) {
	variants := []entity.Variant{
		variant("v2", "B-200", map[string]int{"W1": 10, "W2": 5}, "1200", 3, true),
		variant("v1", "A-100", map[string]int{"W1": 2}, "500", 2, true),
		variant("v3", "C-300", map[string]int{}, "0", 5, false),
	}

	r := inventory.Valuate(variants, 6)

	assert.Equal(t, 17, r.TotalUnits)
	assert.True(t, r.TotalValue.Equal(decimal.NewFromInt(19000)), "total %s", r.TotalValue)
	assert.Equal(t, "1117.647059", r.AverageCost.String())
	assert.Equal(t, 2, r.EnabledVariants)

	require.Len(t, r.ReorderAlerts, 1, "la deshabilitada no alerta")
	assert.Equal(t, "A-100", r.ReorderAlerts[0].SKU)
	assert.Equal(t, "0.5", r.PercentBelowThreshold.String())

	require.Len(t, r.Items, 3)
	assert.Equal(t, []string{"A-100", "B-200", "C-300"}, []string{r.Items[0].SKU, r.Items[1].SKU, r.Items[2].SKU})

	require.Len(t, r.ByWarehouse, 2)
	assert.Equal(t, "W1", r.ByWarehouse[0].WarehouseID)
	assert.Equal(t, 12, r.ByWarehouse[0].Units)
	assert.True(t, r.ByWarehouse[0].Value.Equal(decimal.NewFromInt(13000)))
	assert.True(t, r.ByWarehouse[1].Value.Equal(decimal.NewFromInt(6000)))
}

func TestValuate_Vacio(t *testing.T) {
	r := inventory.Valuate(nil, 6)
	assert.True(t, r.TotalValue.IsZero())
	assert.True(t, r.AverageCost.IsZero())
	assert.True(t, r.PercentBelowThreshold.IsZero())
	assert.Empty(t, r.ReorderAlerts)
}

func TestValuate_Determinista(t *testing.T) {
	variants := []entity.Variant{
		variant("v1", "X", map[string]int{"W1": 1, "W2": 1, "W3": 1}, "3", 0, true),
		variant("v2", "Y", map[string]int{"W2": 4}, "2", 10, true),
	}
	assert.Equal(t, inventory.Valuate(variants, 6), inventory.Valuate(variants, 6))
}

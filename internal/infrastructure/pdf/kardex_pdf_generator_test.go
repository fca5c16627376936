package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"1234567.5", 2, "1.234.567,50"},
		{"999", 0, "999"},
		{"1000", 0, "1.000"},
		{"-45000.125", 2, "-45.000,13"},
		{"0", 2, "0,00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(decimal.RequireFromString(tt.in), tt.places), tt.in)
	}
}

func TestMovementLabel(t *testing.T) {
	assert.Equal(t, "Salida gar.", movementLabel(entity.Movement{Body: entity.Out{From: "W1", Qty: 1, FromWarranty: true}}))
	assert.Equal(t, "Ajuste -", movementLabel(entity.Movement{Body: entity.Adjust{Warehouse: "W1", Mode: entity.AdjustDecrease, Qty: 1}}))
	assert.Equal(t, "W1 → W2", warehouses(entity.Movement{Body: entity.Transfer{From: "W1", To: "W2", Qty: 1}}))
}

func TestGenerate(t *testing.T) {
	g := &KardexPDFGenerator{now: func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }}
	variant := entity.Variant{
		ID: "v1", SKU: "CAM-001", Name: "Camiseta azul",
		StockByWarehouse: map[string]int{"W1": 10},
		UnitCost:         decimal.NewFromInt(1200),
	}
	entries := []ledger.KardexEntry{
		{
			Movement: entity.Movement{ID: 1, Timestamp: time.Now(), VariantID: "v1", SKU: "CAM-001",
				Body: entity.In{To: "W1", Qty: 10, UnitCost: decimal.NewFromInt(1200)}},
			Delta: 10, Balance: 10, BalanceByWarehouse: map[string]int{"W1": 10},
			MainQty: 10, UnitCost: decimal.NewFromInt(1200), BalanceValue: decimal.NewFromInt(12000),
		},
	}

	out, err := g.Generate(variant, entries)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "no es un PDF")

	empty, err := g.Generate(variant, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

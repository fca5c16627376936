package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
//   - in: to_warehouse_id, quantity, unit_cost (obligatorio)
//   - out: from_warehouse_id, quantity, from_warranty opcional
//   - adjust: warehouse_id, adjust_mode (set|increase|decrease), quantity, unit_cost opcional
//   - transfer: from_warehouse_id, to_warehouse_id, quantity
//   - warranty: quantity
type RegisterMovementRequest struct {
	VariantID       string           `json:"variant_id" validate:"required"`
	TransactionID   string           `json:"transaction_id,omitempty" validate:"omitempty,uuid"`
	Type            string           `json:"type" validate:"required,oneof=in out adjust transfer warranty"`
	Quantity        int              `json:"quantity" validate:"min=0"`
	WarehouseID     string           `json:"warehouse_id,omitempty"`
	FromWarehouseID string           `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string           `json:"to_warehouse_id,omitempty"`
	AdjustMode      string           `json:"adjust_mode,omitempty" validate:"omitempty,oneof=set increase decrease"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	FromWarranty    bool             `json:"from_warranty,omitempty"`
	Note            string           `json:"note,omitempty" validate:"max=500"`
}

// MovementResponse movimiento registrado en el kardex.
type MovementResponse struct {
	ID              int64            `json:"id"`
	TransactionID   string           `json:"transaction_id"`
	Timestamp       time.Time        `json:"timestamp"`
	VariantID       string           `json:"variant_id"`
	SKU             string           `json:"sku"`
	Type            string           `json:"type"`
	Quantity        int              `json:"quantity"`
	FromWarehouseID string           `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string           `json:"to_warehouse_id,omitempty"`
	AdjustMode      string           `json:"adjust_mode,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	FromWarranty    bool             `json:"from_warranty,omitempty"`
	Note            string           `json:"note,omitempty"`
}

// MovementEventDTO evento de commit (SSE y Redis).
type MovementEventDTO struct {
	Movement MovementResponse `json:"movement"`
	Variant  VariantResponse  `json:"variant"`
}

// SnapshotResponse salida de GET /api/inventory/snapshot.
type SnapshotResponse struct {
	Products       []ProductResponse   `json:"products"`
	Warehouses     []WarehouseResponse `json:"warehouses"`
	LastMovementID int64               `json:"last_movement_id"`
}

// ValuationItemDTO valorización de una variante.
type ValuationItemDTO struct {
	VariantID    string          `json:"variant_id"`
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Value        decimal.Decimal `json:"value"`
	ReorderLevel int             `json:"reorder_level"`
	Enabled      bool            `json:"enabled"`
}

// WarehouseValuationDTO unidades y valor de una bodega.
type WarehouseValuationDTO struct {
	WarehouseID string          `json:"warehouse_id"`
	Units       int             `json:"units"`
	Value       decimal.Decimal `json:"value"`
}

// ValuationResponse salida de GET /api/inventory/valuation.
type ValuationResponse struct {
	TotalValue            decimal.Decimal         `json:"total_value"`
	TotalUnits            int                     `json:"total_units"`
	AverageCost           decimal.Decimal         `json:"average_cost"`
	EnabledVariants       int                     `json:"enabled_variants"`
	PercentBelowThreshold decimal.Decimal         `json:"percent_below_threshold"` // 0..1
	ReorderAlerts         []ValuationItemDTO      `json:"reorder_alerts"`
	ByWarehouse           []WarehouseValuationDTO `json:"by_warehouse"`
	Items                 []ValuationItemDTO      `json:"items"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para una variante en alerta de reorden.
type ReplenishmentSuggestionDTO struct {
	VariantID          string          `json:"variant_id"`
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	CurrentStock       int             `json:"current_stock"`
	ReorderLevel       int             `json:"reorder_level"`
	IdealStock         int             `json:"ideal_stock"`          // ReorderLevel * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`     // (precio - costo) / precio
	Priority           int             `json:"priority"`             // 1 = más urgente
}

// KardexQuery filtros de GET /api/inventory/variants/:id/kardex.
type KardexQuery struct {
	From  string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit int    `query:"limit" validate:"min=0,max=1000"`
}

// KardexEntryDTO un renglón del kardex con su saldo.
type KardexEntryDTO struct {
	Movement           MovementResponse `json:"movement"`
	Delta              int              `json:"delta"`
	Balance            int              `json:"balance"`
	BalanceByWarehouse map[string]int   `json:"balance_by_warehouse"`
	MainQty            int              `json:"main_qty"`
	WarrantyQty        int              `json:"warranty_qty"`
	UnitCost           decimal.Decimal  `json:"unit_cost"`
	BalanceValue       decimal.Decimal  `json:"balance_value"`
}

// KardexResponse kardex de una variante.
type KardexResponse struct {
	Variant VariantResponse  `json:"variant"`
	Entries []KardexEntryDTO `json:"entries"`
}

// RebuildRequest body de POST /api/inventory/rebuild.
type RebuildRequest struct {
	VariantID string `json:"variant_id,omitempty"`
	Force     bool   `json:"force"`
	DryRun    bool   `json:"dry_run"`
}

// DriftDTO diferencia entre estado vivo y kardex.
type DriftDTO struct {
	VariantID string `json:"variant_id"`
	Field     string `json:"field"`
	Live      string `json:"live"`
	Replayed  string `json:"replayed"`
}

// RebuildResponse resultado de una reconstrucción.
type RebuildResponse struct {
	Variants  int        `json:"variants"`
	Movements int        `json:"movements"`
	Replaced  bool       `json:"replaced"`
	Drifts    []DriftDTO `json:"drifts"`
}

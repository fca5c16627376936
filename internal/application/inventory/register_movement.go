package inventory

import (
	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

// DraftFromRequest adapta el request HTTP al borrador tipado del ledger.
// Para entradas y salidas se acepta warehouse_id como alias de to/from_warehouse_id.
func DraftFromRequest(in dto.RegisterMovementRequest) (ledger.MovementDraft, error) {
	draft := ledger.MovementDraft{
		VariantID:     in.VariantID,
		TransactionID: in.TransactionID,
		Note:          in.Note,
	}
	switch entity.MovementType(in.Type) {
	case entity.MovementTypeIn:
		if in.UnitCost == nil {
			return draft, domain.InvalidMovement("entrada requiere unit_cost")
		}
		draft.Body = entity.In{To: firstNonEmpty(in.ToWarehouseID, in.WarehouseID), Qty: in.Quantity, UnitCost: *in.UnitCost}
	case entity.MovementTypeOut:
		draft.Body = entity.Out{From: firstNonEmpty(in.FromWarehouseID, in.WarehouseID), Qty: in.Quantity, FromWarranty: in.FromWarranty}
	case entity.MovementTypeAdjust:
		if in.AdjustMode == "" {
			return draft, domain.InvalidMovement("ajuste requiere adjust_mode")
		}
		draft.Body = entity.Adjust{
			Warehouse: firstNonEmpty(in.WarehouseID, in.ToWarehouseID, in.FromWarehouseID),
			Mode:      entity.AdjustMode(in.AdjustMode),
			Qty:       in.Quantity,
			UnitCost:  in.UnitCost,
		}
	case entity.MovementTypeTransfer:
		draft.Body = entity.Transfer{From: in.FromWarehouseID, To: in.ToWarehouseID, Qty: in.Quantity}
	case entity.MovementTypeWarranty:
		draft.Body = entity.Warranty{Qty: in.Quantity}
	default:
		return draft, domain.InvalidMovement("tipo de movimiento desconocido %q", in.Type)
	}
	return draft, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

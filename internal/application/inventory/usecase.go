package inventory

import (
	"context"

	"github.com/jhoicas/kardex/internal/application/dto"
)

// RegisterMovementUseCase registra movimientos de inventario en el kardex.
// La exclusión por variante, la validación contra el stock vigente y el costo promedio
// los resuelve el ledger; este caso de uso solo traduce la entrada.
type RegisterMovementUseCase struct {
	ledger Ledger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(ledger Ledger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{ledger: ledger}
}

// RegisterMovement valida y registra el movimiento; devuelve la variante con su nuevo stock.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in dto.RegisterMovementRequest) (*dto.VariantResponse, error) {
	draft, err := DraftFromRequest(in)
	if err != nil {
		return nil, err
	}
	variant, err := uc.ledger.Submit(ctx, draft)
	if err != nil {
		return nil, err
	}
	out := dto.FromVariant(*variant)
	return &out, nil
}

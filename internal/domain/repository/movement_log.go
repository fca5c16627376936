package repository

import (
	"context"
	"iter"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

// ReplayFilter acota una reproducción del kardex. VariantID vacío = todas las variantes;
// AfterID excluye los movimientos con id <= AfterID (cola posterior a un checkpoint).
type ReplayFilter struct {
	VariantID string
	AfterID   int64
}

// MovementLog es el puerto del kardex: log append-only, fuente de verdad del inventario.
// No existe Update ni Delete; las correcciones son contramovimientos.
type MovementLog interface {
	// Append persiste el movimiento y devuelve su id, estrictamente creciente y único.
	// Solo falla por errores de almacenamiento: la validación de negocio ocurre antes.
	Append(ctx context.Context, movement *entity.Movement) (int64, error)

	// Replay produce los movimientos en orden ascendente de id. La secuencia es perezosa,
	// finita y reiniciable (cada range vuelve a leer el log).
	Replay(ctx context.Context, filter ReplayFilter) iter.Seq2[entity.Movement, error]

	// LastID id del último movimiento registrado (0 si el log está vacío).
	LastID(ctx context.Context) (int64, error)
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrDuplicateSKU               = errors.New("el sku ya está registrado")
	ErrInvalidMovement            = errors.New("movimiento inválido")
	ErrUnknownEntity              = errors.New("variante o bodega inexistente")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrInsufficientMainAllocation = errors.New("cantidad principal insuficiente")
	ErrConcurrencyTimeout         = errors.New("tiempo de espera agotado por bloqueo de variante")
	ErrLogAppend                  = errors.New("fallo al escribir en el kardex")
	ErrDriftDetected              = errors.New("diferencia entre proyección y kardex")
	ErrVariantHasStock            = errors.New("la variante aún tiene stock")
)

// InvalidMovement construye un ErrInvalidMovement con el motivo concreto.
func InvalidMovement(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMovement, fmt.Sprintf(format, args...))
}

// UnknownEntity construye un ErrUnknownEntity indicando qué entidad falta.
func UnknownEntity(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownEntity, kind, id)
}

// InsufficientStockError se devuelve cuando un movimiento dejaría una bodega en negativo.
// Es un resultado de negocio legítimo: lleva la cantidad pedida y la disponible.
type InsufficientStockError struct {
	VariantID   string
	WarehouseID string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en bodega %s: solicitado %d, disponible %d",
		e.WarehouseID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InsufficientAllocationError se devuelve cuando la cantidad principal (o de garantía)
// no alcanza para el movimiento.
type InsufficientAllocationError struct {
	VariantID  string
	Allocation string // main, warranty
	Requested  int
	Available  int
}

func (e *InsufficientAllocationError) Error() string {
	return fmt.Sprintf("cantidad %s insuficiente: solicitado %d, disponible %d",
		e.Allocation, e.Requested, e.Available)
}

func (e *InsufficientAllocationError) Is(target error) bool {
	return target == ErrInsufficientMainAllocation
}

// LogAppendError envuelve un fallo de almacenamiento al anexar al kardex.
// Nunca se aplica la proyección si el append falla, así que reintentar es seguro.
type LogAppendError struct {
	Err error
}

func (e *LogAppendError) Error() string { return "append kardex: " + e.Err.Error() }

func (e *LogAppendError) Unwrap() error { return e.Err }

func (e *LogAppendError) Is(target error) bool { return target == ErrLogAppend }

// Drift describe una diferencia entre el estado vivo de una variante y el reconstruido desde el kardex.
type Drift struct {
	VariantID string
	Field     string
	Live      string
	Replayed  string
}

// DriftDetectedError agrupa las diferencias detectadas por una reconstrucción.
type DriftDetectedError struct {
	Drifts []Drift
}

func (e *DriftDetectedError) Error() string {
	parts := make([]string, 0, len(e.Drifts))
	for _, d := range e.Drifts {
		parts = append(parts, fmt.Sprintf("%s.%s vivo=%s kardex=%s", d.VariantID, d.Field, d.Live, d.Replayed))
	}
	return "drift detectado: " + strings.Join(parts, "; ")
}

func (e *DriftDetectedError) Is(target error) bool { return target == ErrDriftDetected }

package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType identifica el tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIn       MovementType = "in"       // entrada
	MovementTypeOut      MovementType = "out"      // salida
	MovementTypeAdjust   MovementType = "adjust"   // ajuste
	MovementTypeTransfer MovementType = "transfer" // traslado entre bodegas
	MovementTypeWarranty MovementType = "warranty" // separación de unidades para garantía
)

// Límites de lo que el kardex puede registrar (columnas INTEGER y NUMERIC(30, 12)).
const (
	MaxQuantity  = math.MaxInt32 // por movimiento y por variante
	CostDecimals = 12            // decimales de un costo unitario
)

// MaxUnitCost cota superior (exclusiva) de un costo unitario: 18 dígitos enteros.
var MaxUnitCost = decimal.New(1, 18)

// AdjustMode define la semántica de un ajuste.
// Los borradores pueden usar AdjustSet (conteo físico); el movimiento registrado siempre
// queda como increase o decrease con la diferencia neta.
type AdjustMode string

const (
	AdjustSet      AdjustMode = "set"
	AdjustIncrease AdjustMode = "increase"
	AdjustDecrease AdjustMode = "decrease"
)

// MovementBody es la suma cerrada de cuerpos de movimiento. Solo los tipos de este paquete
// la implementan; los consumidores hacen type switch sobre In, Out, Adjust, Transfer y Warranty.
type MovementBody interface {
	Type() MovementType
	Quantity() int
	sealed()
}

// In entrada de mercancía a una bodega, con costo unitario (mueve el costo promedio).
type In struct {
	To       string
	Qty      int
	UnitCost decimal.Decimal
}

// Out salida de mercancía desde una bodega. FromWarranty indica que las unidades salen
// de la asignación de garantía (envío de un reemplazo) y no de la principal.
type Out struct {
	From         string
	Qty          int
	FromWarranty bool
}

// Adjust corrección de inventario en una bodega. UnitCost solo aplica a ajustes positivos.
type Adjust struct {
	Warehouse string
	Mode      AdjustMode
	Qty       int
	UnitCost  *decimal.Decimal
}

// Transfer traslado entre bodegas; no cambia el total ni el costo.
type Transfer struct {
	From string
	To   string
	Qty  int
}

// Warranty pasa unidades de la asignación principal a la de garantía.
type Warranty struct {
	Qty int
}

func (In) Type() MovementType       { return MovementTypeIn }
func (Out) Type() MovementType      { return MovementTypeOut }
func (Adjust) Type() MovementType   { return MovementTypeAdjust }
func (Transfer) Type() MovementType { return MovementTypeTransfer }
func (Warranty) Type() MovementType { return MovementTypeWarranty }

func (b In) Quantity() int       { return b.Qty }
func (b Out) Quantity() int      { return b.Qty }
func (b Adjust) Quantity() int   { return b.Qty }
func (b Transfer) Quantity() int { return b.Qty }
func (b Warranty) Quantity() int { return b.Qty }

func (In) sealed()       {}
func (Out) sealed()      {}
func (Adjust) sealed()   {}
func (Transfer) sealed() {}
func (Warranty) sealed() {}

// CostBearing indica si el ajuste debe recalcular el costo promedio.
func (b Adjust) CostBearing() bool {
	return b.Mode == AdjustIncrease && b.UnitCost != nil
}

// Movement es una entrada inmutable del kardex. ID lo asigna el log, en orden creciente,
// y define el orden global de reproducción.
type Movement struct {
	ID            int64
	TransactionID string
	Timestamp     time.Time
	VariantID     string
	SKU           string
	Note          string
	Body          MovementBody
}

// Type devuelve el tipo del cuerpo del movimiento.
func (m Movement) Type() MovementType { return m.Body.Type() }

// MovementRecord es la forma plana persistida/intercambiada de un Movement.
type MovementRecord struct {
	ID            int64
	TransactionID string
	Timestamp     time.Time
	VariantID     string
	SKU           string
	Type          MovementType
	Qty           int
	FromWarehouse string
	ToWarehouse   string
	UnitCost      *decimal.Decimal
	AdjustMode    AdjustMode
	FromWarranty  bool
	Note          string
}

// ToRecord aplana el movimiento.
func (m Movement) ToRecord() MovementRecord {
	r := MovementRecord{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Timestamp:     m.Timestamp,
		VariantID:     m.VariantID,
		SKU:           m.SKU,
		Note:          m.Note,
	}
	switch b := m.Body.(type) {
	case In:
		cost := b.UnitCost
		r.Type, r.Qty, r.ToWarehouse, r.UnitCost = MovementTypeIn, b.Qty, b.To, &cost
	case Out:
		r.Type, r.Qty, r.FromWarehouse, r.FromWarranty = MovementTypeOut, b.Qty, b.From, b.FromWarranty
	case Adjust:
		r.Type, r.Qty, r.AdjustMode, r.UnitCost = MovementTypeAdjust, b.Qty, b.Mode, b.UnitCost
		if b.Mode == AdjustDecrease {
			r.FromWarehouse = b.Warehouse
		} else {
			r.ToWarehouse = b.Warehouse
		}
	case Transfer:
		r.Type, r.Qty, r.FromWarehouse, r.ToWarehouse = MovementTypeTransfer, b.Qty, b.From, b.To
	case Warranty:
		r.Type, r.Qty = MovementTypeWarranty, b.Qty
	}
	return r
}

// ToMovement reconstruye el movimiento tipado desde su forma plana.
func (r MovementRecord) ToMovement() (Movement, error) {
	m := Movement{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		Timestamp:     r.Timestamp,
		VariantID:     r.VariantID,
		SKU:           r.SKU,
		Note:          r.Note,
	}
	switch r.Type {
	case MovementTypeIn:
		if r.UnitCost == nil {
			return Movement{}, fmt.Errorf("movimiento %d: entrada sin costo unitario", r.ID)
		}
		m.Body = In{To: r.ToWarehouse, Qty: r.Qty, UnitCost: *r.UnitCost}
	case MovementTypeOut:
		m.Body = Out{From: r.FromWarehouse, Qty: r.Qty, FromWarranty: r.FromWarranty}
	case MovementTypeAdjust:
		wh := r.ToWarehouse
		if r.AdjustMode == AdjustDecrease {
			wh = r.FromWarehouse
		}
		m.Body = Adjust{Warehouse: wh, Mode: r.AdjustMode, Qty: r.Qty, UnitCost: r.UnitCost}
	case MovementTypeTransfer:
		m.Body = Transfer{From: r.FromWarehouse, To: r.ToWarehouse, Qty: r.Qty}
	case MovementTypeWarranty:
		m.Body = Warranty{Qty: r.Qty}
	default:
		return Movement{}, fmt.Errorf("movimiento %d: tipo desconocido %q", r.ID, r.Type)
	}
	return m, nil
}

package inventory

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/domain/entity"
)

// Projection es la caché de posiciones por variante (stock + costo), derivada del kardex.
//
// Cada variante guarda un puntero atómico a una Position inmutable (copy-on-write):
// los lectores obtienen una vista consistente de la variante sin bloquear a los escritores.
// La serialización de escrituras por variante es responsabilidad del llamador (ledger.Service).
type Projection struct {
	folder    Folder
	mu        sync.RWMutex
	positions map[string]*atomic.Pointer[Position]
}

// NewProjection crea una proyección vacía.
func NewProjection(folder Folder) *Projection {
	return &Projection{folder: folder, positions: make(map[string]*atomic.Pointer[Position])}
}

// Folder devuelve las reglas de fold de la proyección.
func (p *Projection) Folder() Folder { return p.folder }

func (p *Projection) slot(variantID string, create bool) *atomic.Pointer[Position] {
	p.mu.RLock()
	s := p.positions[variantID]
	p.mu.RUnlock()
	if s != nil || !create {
		return s
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if s = p.positions[variantID]; s == nil {
		s = &atomic.Pointer[Position]{}
		p.positions[variantID] = s
	}
	return s
}

// Position devuelve la posición actual de la variante (estado inicial si no tiene movimientos).
// El valor devuelto no debe modificarse.
func (p *Projection) Position(variantID string) Position {
	if s := p.slot(variantID, false); s != nil {
		if pos := s.Load(); pos != nil {
			return *pos
		}
	}
	return NewPosition(variantID)
}

// Quantity cantidad de la variante en la bodega.
func (p *Projection) Quantity(variantID, warehouseID string) int {
	return p.Position(variantID).Quantity(warehouseID)
}

// TotalQuantity cantidad total de la variante en todas las bodegas.
func (p *Projection) TotalQuantity(variantID string) int {
	return p.Position(variantID).TotalQuantity()
}

// UnitCost costo promedio ponderado vigente de la variante.
func (p *Projection) UnitCost(variantID string) decimal.Decimal {
	return p.Position(variantID).UnitCost
}

// Apply aplica un movimiento ya registrado y publica la nueva posición.
// El llamador debe tener la exclusión de la variante.
func (p *Projection) Apply(m entity.Movement) (Position, error) {
	next, err := p.folder.Fold(p.Position(m.VariantID), m)
	if err != nil {
		return Position{}, err
	}
	p.Publish(next)
	return next, nil
}

// Publish reemplaza atómicamente la posición de la variante.
func (p *Projection) Publish(pos Position) {
	c := pos.Clone()
	p.slot(pos.VariantID, true).Store(&c)
}

// Reset descarta el estado de la variante.
func (p *Projection) Reset(variantID string) {
	if s := p.slot(variantID, false); s != nil {
		s.Store(nil)
	}
}

// VariantIDs variantes con posición publicada, ordenadas.
func (p *Projection) VariantIDs() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.positions))
	for id, s := range p.positions {
		if s.Load() != nil {
			ids = append(ids, id)
		}
	}
	p.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

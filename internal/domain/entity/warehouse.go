package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/kardex/internal/domain"
)

// Warehouse bodega física. Es dato de referencia: se siembra desde configuración y el kardex
// sólo la referencia por ID.
type Warehouse struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWarehouse valida el ID (sin espacios ni separadores de configuración) y usa el ID como
// nombre si no se indica otro.
func NewWarehouse(id, name string, now time.Time) (*Warehouse, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 50 || strings.ContainsAny(id, " \t,:") {
		return nil, fmt.Errorf("%w: id de bodega %q", domain.ErrInvalidInput, id)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = id
	}
	return &Warehouse{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

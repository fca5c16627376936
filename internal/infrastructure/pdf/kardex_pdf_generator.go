// Package pdf genera el reporte PDF del kardex de una variante.
//
// Layout de la página A4 (horizontal):
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│  HEADER: SKU + nombre de la variante   │  KARDEX + fecha de emisión  │
//	│  RESUMEN: stock total / costo promedio / valor / asignaciones        │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  TABLA: # | Fecha | Tipo | Bodegas | Entrada | Salida | Saldo | ...  │
//	│  ──────────────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de método de costeo                                 │
//	└──────────────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexPDFGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type KardexPDFGenerator struct {
	now func() time.Time
}

// NewKardexPDFGenerator construye el generador.
func NewKardexPDFGenerator() *KardexPDFGenerator { return &KardexPDFGenerator{now: time.Now} }

// Generate genera el PDF y devuelve sus bytes.
func (g *KardexPDFGenerator) Generate(variant entity.Variant, entries []ledger.KardexEntry) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+variant.SKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(variant, g.now()))
	m.AddRows(summaryRow(variant))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(entries) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos en el período.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range tableRows(entries) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Método de valoración: costo promedio ponderado. Las correcciones se registran como contramovimientos.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(v entity.Variant, now time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(v.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("SKU: "+v.SKU, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Emitido: "+now.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func summaryRow(v entity.Variant) core.Row {
	total := v.TotalQuantity()
	value := decimal.NewFromInt(int64(total)).Mul(v.UnitCost)
	return row.New(10).Add(
		col.New(12).Add(text.New(fmt.Sprintf(
			"Stock total: %d   |   Costo promedio: $%s   |   Valor: $%s   |   Principal: %d   |   Garantía: %d",
			total, formatMoney(v.UnitCost, 2), formatMoney(value, 2), v.MainAllocationQty, v.WarrantyAllocationQty,
		), props.Text{Size: 8, Top: 2})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Left),
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Left),
		h("Bodegas", 2, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Costo prom.", 2, align.Right),
		h("Valor saldo", 1, align.Right),
	)
}

func tableRows(entries []ledger.KardexEntry) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		in, out := "", ""
		switch {
		case e.Delta > 0:
			in = fmt.Sprint(e.Delta)
		case e.Delta < 0:
			out = fmt.Sprint(-e.Delta)
		}
		result = append(result, row.New(6).Add(
			cell(fmt.Sprint(e.Movement.ID), 1, align.Left),
			cell(e.Movement.Timestamp.Format("02/01/2006 15:04"), 2, align.Left),
			cell(movementLabel(e.Movement), 1, align.Left),
			cell(warehouses(e.Movement), 2, align.Left),
			cell(in, 1, align.Right),
			cell(out, 1, align.Right),
			cell(fmt.Sprint(e.Balance), 1, align.Right),
			cell("$"+formatMoney(e.UnitCost, 2), 2, align.Right),
			cell("$"+formatMoney(e.BalanceValue, 0), 1, align.Right),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func movementLabel(m entity.Movement) string {
	switch b := m.Body.(type) {
	case entity.In:
		return "Entrada"
	case entity.Out:
		if b.FromWarranty {
			return "Salida gar."
		}
		return "Salida"
	case entity.Adjust:
		if b.Mode == entity.AdjustDecrease {
			return "Ajuste -"
		}
		return "Ajuste +"
	case entity.Transfer:
		return "Traslado"
	case entity.Warranty:
		return "Garantía"
	}
	return string(m.Type())
}

func warehouses(m entity.Movement) string {
	switch b := m.Body.(type) {
	case entity.In:
		return b.To
	case entity.Out:
		return b.From
	case entity.Adjust:
		return b.Warehouse
	case entity.Transfer:
		return b.From + " → " + b.To
	}
	return "—"
}

// formatMoney formato colombiano: puntos de miles y coma decimal.
// Ej: 1234567.5 con 2 decimales → "1.234.567,50"
func formatMoney(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		return sign + string(buf) + "," + frac
	}
	return sign + string(buf)
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/application/ledger"
	"github.com/jhoicas/kardex/internal/domain"
)

// ReportUseCase lecturas del inventario: snapshot, valorización, kardex y reconstrucción.
type ReportUseCase struct {
	ledger Ledger
	pdf    KardexPDFGenerator
}

// NewReportUseCase construye el caso de uso. pdf puede ser nil si no se exponen PDFs.
func NewReportUseCase(ledger Ledger, pdf KardexPDFGenerator) *ReportUseCase {
	return &ReportUseCase{ledger: ledger, pdf: pdf}
}

// Snapshot inventario completo con stock y costo vigentes.
func (uc *ReportUseCase) Snapshot(ctx context.Context) (*dto.SnapshotResponse, error) {
	snap, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.FromSnapshot(snap)
	return &out, nil
}

// Variant variante con stock por bodega, costo y asignaciones.
func (uc *ReportUseCase) Variant(ctx context.Context, id string) (*dto.VariantResponse, error) {
	v, err := uc.ledger.Variant(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromVariant(*v)
	return &out, nil
}

// Valuation KPIs de valorización.
func (uc *ReportUseCase) Valuation(ctx context.Context) (*dto.ValuationResponse, error) {
	report, err := uc.ledger.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.FromValuation(report)
	return &out, nil
}

// Kardex renglones del kardex de una variante con saldo acumulado.
func (uc *ReportUseCase) Kardex(ctx context.Context, variantID string, q dto.KardexQuery) (*dto.KardexResponse, error) {
	filter, err := kardexFilter(q)
	if err != nil {
		return nil, err
	}
	variant, err := uc.ledger.Variant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	entries, err := uc.ledger.Kardex(ctx, variantID, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.KardexResponse{Variant: dto.FromVariant(*variant), Entries: make([]dto.KardexEntryDTO, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.FromKardexEntry(e))
	}
	return out, nil
}

// KardexPDF genera el PDF del kardex de una variante.
func (uc *ReportUseCase) KardexPDF(ctx context.Context, variantID string, q dto.KardexQuery) ([]byte, error) {
	if uc.pdf == nil {
		return nil, domain.ErrNotFound
	}
	filter, err := kardexFilter(q)
	if err != nil {
		return nil, err
	}
	variant, err := uc.ledger.Variant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	entries, err := uc.ledger.Kardex(ctx, variantID, filter)
	if err != nil {
		return nil, err
	}
	return uc.pdf.Generate(*variant, entries)
}

// Rebuild reconstruye desde el kardex. Ante diferencias devuelve el reporte junto al error.
func (uc *ReportUseCase) Rebuild(ctx context.Context, in dto.RebuildRequest) (*dto.RebuildResponse, error) {
	report, err := uc.ledger.RebuildFromLog(ctx, in.VariantID, ledger.RebuildOptions{Force: in.Force, DryRun: in.DryRun})
	if report == nil {
		return nil, err
	}
	out := dto.FromRebuild(report)
	return &out, err
}

// kardexFilter fechas en formato YYYY-MM-DD; "to" incluye el día completo.
func kardexFilter(q dto.KardexQuery) (ledger.KardexFilter, error) {
	filter := ledger.KardexFilter{Limit: q.Limit}
	if q.From != "" {
		from, err := time.Parse(time.DateOnly, q.From)
		if err != nil {
			return filter, domain.ErrInvalidInput
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.DateOnly, q.To)
		if err != nil {
			return filter, domain.ErrInvalidInput
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	return filter, nil
}

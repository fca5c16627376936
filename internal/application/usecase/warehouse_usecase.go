package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex/internal/application/dto"
	"github.com/jhoicas/kardex/internal/domain"
	"github.com/jhoicas/kardex/internal/domain/entity"
	"github.com/jhoicas/kardex/internal/domain/inventory"
	"github.com/jhoicas/kardex/internal/domain/repository"
)

// StockValuation fuente del desglose de unidades y valor por bodega.
type StockValuation interface {
	Valuation(ctx context.Context) (*inventory.ValuationReport, error)
}

// WarehouseUseCase bodegas: dato de referencia sembrado desde configuración.
type WarehouseUseCase struct {
	repo  repository.WarehouseRepository
	stock StockValuation
}

// NewWarehouseUseCase construye el caso de uso. stock puede ser nil (sólo siembra); List
// devuelve entonces las bodegas sin unidades.
func NewWarehouseUseCase(repo repository.WarehouseRepository, stock StockValuation) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, stock: stock}
}

// Seed registra (o renombra) las bodegas configuradas. Nunca elimina bodegas: los movimientos
// históricos las siguen referenciando.
func (uc *WarehouseUseCase) Seed(ctx context.Context, warehouses map[string]string) error {
	now := time.Now()
	for id, name := range warehouses {
		w, err := entity.NewWarehouse(id, name, now)
		if err != nil {
			return err
		}
		if err := uc.repo.Upsert(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

// List bodegas con su stock valorizado.
func (uc *WarehouseUseCase) List(ctx context.Context) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	byWarehouse, err := uc.breakdown(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.WarehouseListResponse{Items: make([]dto.WarehouseStockDTO, 0, len(list)), TotalValue: decimal.Zero}
	for _, w := range list {
		item := uc.item(*w, byWarehouse)
		out.TotalUnits += item.Units
		out.TotalValue = out.TotalValue.Add(item.Value)
		out.Items = append(out.Items, item)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return out, nil
}

// Get una bodega con su stock valorizado; ErrNotFound si no existe.
func (uc *WarehouseUseCase) Get(ctx context.Context, id string) (*dto.WarehouseStockDTO, error) {
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}
	byWarehouse, err := uc.breakdown(ctx)
	if err != nil {
		return nil, err
	}
	item := uc.item(*w, byWarehouse)
	return &item, nil
}

func (uc *WarehouseUseCase) breakdown(ctx context.Context) (map[string]inventory.WarehouseValuation, error) {
	out := map[string]inventory.WarehouseValuation{}
	if uc.stock == nil {
		return out, nil
	}
	report, err := uc.stock.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range report.ByWarehouse {
		out[w.WarehouseID] = w
	}
	return out, nil
}

func (uc *WarehouseUseCase) item(w entity.Warehouse, byWarehouse map[string]inventory.WarehouseValuation) dto.WarehouseStockDTO {
	v := byWarehouse[w.ID]
	return dto.WarehouseStockDTO{WarehouseResponse: dto.FromWarehouse(w), Units: v.Units, Value: v.Value}
}

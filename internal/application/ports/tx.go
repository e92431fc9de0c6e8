package ports

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

// Repos repositorios ligados a una misma transacción (o al pool fuera de ella).
type Repos struct {
	Serials    repository.SerialRepository
	History    repository.HistoryRepository
	Categories repository.CategoryRepository
	Orders     repository.ProductionOrderRepository
	MoveLines  repository.MoveLineRepository
	Alerts     repository.StockAlertRepository
	Settings   repository.DistributionSettingsRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn devuelve error se hace rollback.
// Las entradas del historial se escriben en la misma transacción que la mutación que registran.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

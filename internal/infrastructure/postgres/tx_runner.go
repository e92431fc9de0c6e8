package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, m *metrics.Metrics) *TxRunner {
	return &TxRunner{pool: pool, metrics: m}
}

// Repos repositorios atados al pool, para lecturas fuera de transacción.
func (r *TxRunner) Repos() ports.Repos {
	return reposFor(r.pool, r.metrics)
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(reposFor(tx, r.metrics)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func reposFor(q Querier, m *metrics.Metrics) ports.Repos {
	return ports.Repos{
		Serials:    NewSerialRepository(q, m),
		History:    NewHistoryRepository(q, m),
		Categories: NewCategoryRepository(q),
		Orders:     NewProductionOrderRepository(q, m),
		MoveLines:  NewMoveLineRepository(q),
		Alerts:     NewStockAlertRepository(q),
		Settings:   NewDistributionSettingsRepository(q),
	}
}

// Package batch ejecuta operaciones por serial, cada una en su propia transacción,
// acumulando el resultado por registro.
package batch

import (
	"context"
	"fmt"

	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/lifecycle"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

// Func muta u (bloqueado con FOR UPDATE) usando los repositorios de la transacción.
type Func func(ctx context.Context, r ports.Repos, u *entity.SerialUnit) error

// Load carga los seriales pedidos ordenados por Seq. Los IDs inexistentes quedan
// registrados como ErrNotFound en el resultado.
func Load(ctx context.Context, serials repository.SerialRepository, ids []string) ([]*entity.SerialUnit, *domain.BatchResult, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%w: lista de seriales vacía", domain.ErrInvalidInput)
	}
	units, err := serials.Find(ctx, repository.SerialFilter{IDs: ids})
	if err != nil {
		return nil, nil, err
	}
	res := &domain.BatchResult{}
	found := make(map[string]bool, len(units))
	for _, u := range units {
		found[u.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			res.Fail(id, "", domain.ErrNotFound)
		}
	}
	lifecycle.SortBySeq(units)
	return units, res, nil
}

// Run aplica fn a cada serial en orden de Seq, una transacción por serial.
// Un fallo individual se registra y el lote continúa; si ctx se cancela entre
// transacciones se devuelve ctx.Err() y lo ya confirmado permanece.
func Run(ctx context.Context, tx ports.TxRunner, units []*entity.SerialUnit, res *domain.BatchResult, fn Func) error {
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, name := u.ID, u.Name
		err := tx.Run(ctx, func(r ports.Repos) error {
			cur, err := r.Serials.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if cur == nil {
				return domain.ErrNotFound
			}
			return fn(ctx, r, cur)
		})
		if err != nil {
			res.Fail(id, name, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		res.Add(id, name)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

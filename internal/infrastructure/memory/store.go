// Package memory implementa los puertos de persistencia en memoria con transacciones
// copy-on-commit: cada Run trabaja sobre una copia del estado y la publica solo si fn no falla.
// Un único mutex serializa las transacciones, lo que equivale a bloquear todas las filas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	seq        int64
	serials    map[string]*entity.SerialUnit
	history    []*entity.HistoryEntry // inmutables: se comparten entre copias
	categories map[string]*entity.SerialCategory
	orders     map[string]*entity.ProductionOrder
	moveLines  map[string]*entity.MoveLine
	alerts     map[string]*entity.StockAlert
	settings   map[string]*entity.DistributionSettings
}

func newState() *state {
	return &state{
		serials:    make(map[string]*entity.SerialUnit),
		categories: make(map[string]*entity.SerialCategory),
		orders:     make(map[string]*entity.ProductionOrder),
		moveLines:  make(map[string]*entity.MoveLine),
		alerts:     make(map[string]*entity.StockAlert),
		settings:   make(map[string]*entity.DistributionSettings),
	}
}

func (s *state) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.serials {
		c.serials[k] = v.Clone()
	}
	c.history = append([]*entity.HistoryEntry(nil), s.history...)
	for k, v := range s.categories {
		c.categories[k] = cloneCategory(v)
	}
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range s.moveLines {
		l := *v
		c.moveLines[k] = &l
	}
	for k, v := range s.alerts {
		c.alerts[k] = cloneAlert(v)
	}
	for k, v := range s.settings {
		d := *v
		c.settings[k] = &d
	}
	return c
}

func cloneCategory(c *entity.SerialCategory) *entity.SerialCategory {
	cp := *c
	cp.Recipients = append([]string(nil), c.Recipients...)
	return &cp
}

func cloneAlert(a *entity.StockAlert) *entity.StockAlert {
	cp := *a
	cp.Recipients = append([]string(nil), a.Recipients...)
	if a.ClosedAt != nil {
		t := *a.ClosedAt
		cp.ClosedAt = &t
	}
	return &cp
}

// access abstrae el acceso al estado: bloqueado (fuera de tx) o directo (dentro de tx).
type access interface {
	do(fn func(st *state) error) error
}

type lockedAccess struct{ s *Store }

func (a lockedAccess) do(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

type txAccess struct{ st *state }

func (a txAccess) do(fn func(st *state) error) error { return fn(a.st) }

// Store almacenamiento en memoria; implementa ports.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos repositorios fuera de transacción (cada operación es atómica por sí sola).
func (s *Store) Repos() ports.Repos {
	return reposFor(lockedAccess{s: s})
}

// Run ejecuta fn sobre una copia del estado y la publica si fn termina sin error.
// Los repositorios recibidos por fn no deben usarse fuera de ella.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(reposFor(txAccess{st: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func reposFor(a access) ports.Repos {
	return ports.Repos{
		Serials:    &serialRepo{a: a},
		History:    &historyRepo{a: a},
		Categories: &categoryRepo{a: a},
		Orders:     &orderRepo{a: a},
		MoveLines:  &moveLineRepo{a: a},
		Alerts:     &alertRepo{a: a},
		Settings:   &settingsRepo{a: a},
	}
}

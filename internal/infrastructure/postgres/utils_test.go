package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
)

func TestSerialWhere_PlaceholdersEnOrden(t *testing.T) {
	w := serialWhere(repository.SerialFilter{
		IDs:        []string{"a", "b"},
		States:     []entity.SerialState{entity.SerialStateWarehouse},
		ProductID:  "P1",
		ActiveOnly: true,
	})
	assert.Equal(t, " WHERE id = ANY($1) AND state = ANY($2) AND product_id = $3 AND active", w.sql())
	assert.Equal(t, []any{[]string{"a", "b"}, []string{"warehouse"}, "P1"}, w.args)
}

func TestSerialWhere_SinFiltros(t *testing.T) {
	w := serialWhere(repository.SerialFilter{})
	assert.Empty(t, w.sql(), "un filtro vacío no agrega WHERE")
	assert.Empty(t, w.args)
}

func TestMapUnique_PorConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "serial_unit_category_name_key", Detail: "Key (name)=(SG1) already exists."}
	assert.ErrorIs(t, mapUnique(pgErr, serialUnique), domain.ErrDuplicateName)

	other := &pgconn.PgError{Code: "23505", ConstraintName: "otro"}
	assert.ErrorIs(t, mapUnique(other, serialUnique), domain.ErrDuplicate)

	plain := errors.New("conexión perdida")
	assert.Equal(t, plain, mapUnique(plain, serialUnique), "errores que no son 23505 pasan sin cambio")
}

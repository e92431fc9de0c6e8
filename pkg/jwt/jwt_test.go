package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/setsco-serial-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u1", CompanyID: "c1", Role: pkgjwt.RoleBodeguero}
	token, err := pkgjwt.Generate(testSecret, id, "setsco", 5)
	require.NoError(t, err)

	got, err := pkgjwt.Parse(testSecret, token, "setsco")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_Rechazos(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u1", CompanyID: "c1", Role: pkgjwt.RoleAdmin}

	token, err := pkgjwt.Generate(testSecret, id, "setsco", 5)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("otro-secreto", token, "setsco")
	assert.Error(t, err, "firma incorrecta")

	_, err = pkgjwt.Parse(testSecret, token, "otro-emisor")
	assert.Error(t, err, "emisor distinto")

	expired, err := pkgjwt.Generate(testSecret, id, "setsco", -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(testSecret, expired, "setsco")
	assert.Error(t, err, "token expirado")

	_, err = pkgjwt.Generate("", id, "setsco", 5)
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)
}

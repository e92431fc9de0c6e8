package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info").Component("custody")

	log.Info().Str("serial", "AS00001").Msg("transferido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "custody", line["component"])
	assert.Equal(t, "AS00001", line["serial"])
	assert.Equal(t, "transferido", line["message"])
}

func TestNivel_FiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn")
	log.Debug().Msg("oculto")
	log.Info().Msg("oculto")
	assert.Empty(t, buf.String(), "debug e info no deben escribirse con nivel warn")

	var nilLogger *logger.Logger
	assert.NotPanics(t, func() { nilLogger.Component("x").Info().Msg("descartado") })
}

func TestNivel_DesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "verbose")
	log.Debug().Msg("oculto")
	assert.Empty(t, buf.String())
	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

// Package safetystock vigila el stock de seriales sin asignar (estado new) por categoría
// y notifica cuando cae por debajo del nivel de seguridad.
package safetystock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/setsco-serial-api/internal/application/ports"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/internal/domain/repository"
	"github.com/jhoicas/setsco-serial-api/internal/infrastructure/metrics"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

// Notifier entrega una alerta a sus destinatarios.
type Notifier interface {
	Notify(ctx context.Context, alert *entity.StockAlert) error
}

// Monitor escaneo periódico o bajo demanda. No muta seriales; solo registra alertas
// para no notificar dos veces la misma caída (una alerta abierta por categoría).
type Monitor struct {
	repos             ports.Repos
	notifier          Notifier
	defaultRecipients []string
	log               *logger.Logger
	metrics           *metrics.Metrics
	now               func() time.Time
}

// NewMonitor construye el monitor.
func NewMonitor(repos ports.Repos, notifier Notifier, defaultRecipients []string, log *logger.Logger, m *metrics.Metrics) *Monitor {
	return &Monitor{
		repos:             repos,
		notifier:          notifier,
		defaultRecipients: defaultRecipients,
		log:               log.Component("safety_stock"),
		metrics:           m,
		now:               time.Now,
	}
}

// Scan revisa todas las categorías monitoreadas y devuelve las alertas emitidas.
func (m *Monitor) Scan(ctx context.Context) ([]*entity.StockAlert, error) {
	cats, err := m.repos.Categories.ListMonitored(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var emitted []*entity.StockAlert
	for _, c := range cats {
		alert, err := m.check(ctx, c)
		if err != nil {
			return emitted, err
		}
		if alert != nil {
			emitted = append(emitted, alert)
		}
	}
	return emitted, nil
}

// CheckCategories revisa solo las categorías indicadas (p.ej. tras asignar a producción).
func (m *Monitor) CheckCategories(ctx context.Context, categoryIDs []string) error {
	for _, id := range categoryIDs {
		c, err := m.repos.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil || !c.MonitorsSafetyStock() {
			continue
		}
		if _, err := m.check(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Run escanea cada interval hasta que ctx se cancele.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			alerts, err := m.Scan(ctx)
			if err != nil {
				m.log.Error().Err(err).Msg("escaneo de stock de seguridad")
				continue
			}
			m.log.Debug().Int("alerts", len(alerts)).Msg("escaneo de stock de seguridad")
		}
	}
}

func (m *Monitor) check(ctx context.Context, c *entity.SerialCategory) (*entity.StockAlert, error) {
	available, err := m.repos.Serials.Count(ctx, repository.SerialFilter{
		CategoryID: c.ID,
		States:     []entity.SerialState{entity.SerialStateNew},
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", c.Name, err)
	}
	m.metrics.Available(c.Name, available)

	open, err := m.repos.Alerts.GetOpenByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if !decimal.NewFromInt(int64(available)).LessThan(c.SafetyStockLevel) {
		if open != nil {
			if err := m.repos.Alerts.Close(ctx, open.ID, m.now()); err != nil {
				return nil, err
			}
			m.log.Info().Str("category", c.Name).Int("available", available).Msg("stock de seguridad recuperado")
		}
		return nil, nil
	}
	if open != nil {
		return nil, nil
	}

	recipients := c.Recipients
	if len(recipients) == 0 {
		recipients = m.defaultRecipients
	}
	alert := &entity.StockAlert{
		CategoryID:       c.ID,
		CategoryName:     c.Name,
		CompanyID:        c.CompanyID,
		AvailableCount:   available,
		SafetyStockLevel: c.SafetyStockLevel,
		Recipients:       append([]string(nil), recipients...),
		Open:             true,
		CreatedAt:        m.now(),
	}
	if err := m.repos.Alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, alert); err != nil {
			m.log.Error().Str("category", c.Name).Err(err).Msg("notificación de stock de seguridad")
		}
	}
	m.metrics.SafetyStockAlert(c.Name)
	m.log.Warn().Str("category", c.Name).Int("available", available).
		Str("safety_stock_level", c.SafetyStockLevel.String()).Strs("recipients", alert.Recipients).
		Msg("stock de seguridad bajo")
	return alert, nil
}

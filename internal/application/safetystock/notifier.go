package safetystock

import (
	"context"

	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
	"github.com/jhoicas/setsco-serial-api/pkg/logger"
)

// LogNotifier escribe la alerta en el log estructurado; el envío por correo
// o actividades queda a cargo de quien consuma esos eventos.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Component("notifier")}
}

// Notify implementa Notifier.
func (n *LogNotifier) Notify(_ context.Context, a *entity.StockAlert) error {
	n.log.Warn().
		Str("event", "safety_stock_low").
		Str("alert_id", a.ID).
		Str("category", a.CategoryName).
		Str("company_id", a.CompanyID).
		Int("available", a.AvailableCount).
		Str("safety_stock_level", a.SafetyStockLevel.String()).
		Strs("recipients", a.Recipients).
		Msg("Stock de seriales bajo: reponer etiquetas")
	return nil
}

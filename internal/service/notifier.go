package service

import (
	"context"

	"github.com/rs/zerolog"
)

// logNotifier implements Notifier by writing the alert to the log. Actual
// delivery to the vendor's inbox is an external collaborator's job.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a Notifier that logs low-stock alerts.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *logNotifier) LowStock(ctx context.Context, productID, productName, vendorID string, remaining int) {
	n.logger.Warn().
		Str("product_id", productID).
		Str("product_name", productName).
		Str("vendor_id", vendorID).
		Int("remaining_stock", remaining).
		Msg("product stock is low")
}

package courier

import (
	"context"
	"fmt"

	"github.com/murdhanno/backend/internal/domain/shipping"
	infraconfig "github.com/murdhanno/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the courier selected by cfg.Provider
func New(cfg *infraconfig.CourierConfig, logger *zap.Logger) (shipping.Courier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", infraconfig.CourierNone:
		logger.Info("No courier configured")
		return Disabled{}, nil
	case infraconfig.CourierPathao:
		client, err := NewPathaoClient(PathaoConfig{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Username:     cfg.Username,
			Password:     cfg.Password,
			Timeout:      cfg.Timeout,
		}, WithPathaoLogger(logger.Named("pathao")))
		if err != nil {
			return nil, err
		}
		logger.Info("Using Pathao courier", zap.String("base_url", cfg.BaseURL))
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported courier provider %q", cfg.Provider)
	}
}

// Disabled answers every call with shipping.ErrCourierNotConfigured
type Disabled struct{}

func (Disabled) Name() string { return infraconfig.CourierNone }

func (Disabled) Cities(context.Context) ([]shipping.City, error) {
	return nil, shipping.ErrCourierNotConfigured
}

func (Disabled) Zones(context.Context, int) ([]shipping.Zone, error) {
	return nil, shipping.ErrCourierNotConfigured
}

func (Disabled) CreateDelivery(context.Context, shipping.DeliveryRequest) (*shipping.Consignment, error) {
	return nil, shipping.ErrCourierNotConfigured
}

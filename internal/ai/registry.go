package ai

import (
	"fmt"

	"freightdesk/internal/config"
	"freightdesk/internal/port"
)

// ProviderFactory is a function that creates an AIProvider from a tier config.
type ProviderFactory func(cfg *config.TierConfig) (port.AIProvider, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider creates an AIProvider from a tier config using the registered factory.
func NewProvider(cfg *config.TierConfig) (port.AIProvider, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

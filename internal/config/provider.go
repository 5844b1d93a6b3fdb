// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects the configuration file to load.
	LoadOptions struct {
		// ConfigFilePath is the --config file. It must exist when set.
		ConfigFilePath string
		// ConfigDirPath replaces ConfigDir() when set.
		ConfigDirPath string
	}

	// Provider loads the tool configuration.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a function to Provider.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// NewProvider returns the Provider reading CUE files with PASTESETTINGS_*
// environment overrides.
func NewProvider() Provider {
	return ProviderFunc(func(ctx context.Context, opts LoadOptions) (*Config, error) {
		cfg, _, err := loadWithOptions(ctx, opts)
		return cfg, err
	})
}

func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

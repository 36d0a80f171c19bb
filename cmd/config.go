package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lfmgenre/internal/shared"
)

// ConfigShow prints the effective configuration as TOML with the API key masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	masked := *r.config
	masked.LastFM.APIKey = maskSecret(masked.LastFM.APIKey)

	r.writePlain("# %s\n", r.configPath)
	return masked.Encode(r.output)
}

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("✓ Wrote %s\n", r.configPath)
}

// ConfigValidate reports whether the configuration can be used for tagging.
func (r *Runner) ConfigValidate(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", r.configPath, err)
	}
	return r.writePlain("✓ %s is valid\n", r.configPath)
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

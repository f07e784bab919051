package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// config is the environment configuration for the CLI. A .env file in the
// working directory is loaded first when present.
type config struct {
	PatternStore     string `envconfig:"PATTERN_STORE"`
	VendorSignatures string `envconfig:"VENDOR_SIGNATURES"`
	Debug            bool   `envconfig:"DEBUG"`
}

func loadConfig() (config, error) {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("invoicetext", &cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: Server{Host: "localhost", Port: "8000"},
		Database: Database{
			Driver: "postgres",
			URL:    "localhost:5432/shop_ops",
			User:   "postgres",
		},
		SecretKey: "segredo",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "configuração mínima válida",
			mutate: func(c *Config) {},
		},
		{
			name:    "sem chave de assinatura",
			mutate:  func(c *Config) { c.SecretKey = "" },
			wantErr: true,
		},
		{
			name:    "porta não numérica",
			mutate:  func(c *Config) { c.Server.Port = "http" },
			wantErr: true,
		},
		{
			name:    "cache habilitado sem endereço do Redis",
			mutate:  func(c *Config) { c.Cache = Cache{Enabled: true, TTL: time.Minute} },
			wantErr: true,
		},
		{
			name:   "cache desabilitado dispensa endereço",
			mutate: func(c *Config) { c.Cache = Cache{Enabled: false} },
		},
		{
			name: "reconciliação habilitada sem agenda",
			mutate: func(c *Config) {
				c.ProductTotalsReconcile = ProductTotalsReconcile{Enabled: true, MaxConcurrentJobs: 2}
			},
			wantErr: true,
		},
		{
			name:    "concorrência negativa",
			mutate:  func(c *Config) { c.ProductTotalsReconcile.MaxConcurrentJobs = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

package cli

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Format != "svg" {
		t.Errorf("Format = %q, want svg", cfg.Format)
	}
	if cfg.Cache != "file" {
		t.Errorf("Cache = %q, want file", cfg.Cache)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "Defaults", mutate: func(c *Config) {}},
		{name: "PNG", mutate: func(c *Config) { c.Format = "png" }},
		{name: "RedisBackend", mutate: func(c *Config) { c.Cache = "redis" }},
		{name: "CacheOff", mutate: func(c *Config) { c.Cache = "off" }},
		{name: "BadFormat", mutate: func(c *Config) { c.Format = "pdf" }, wantErr: true},
		{name: "BadCache", mutate: func(c *Config) { c.Cache = "memcached" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

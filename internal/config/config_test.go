package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfigDefaults tests that NewConfig sets documented defaults.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Delay != DefaultDelay {
		t.Errorf("expected delay %v, got %v", DefaultDelay, cfg.Delay)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("expected workers %d, got %d", DefaultWorkers, cfg.Workers)
	}
	if cfg.OutputPath != DefaultOutput {
		t.Errorf("expected output %q, got %q", DefaultOutput, cfg.OutputPath)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("expected user agent %q, got %q", DefaultUserAgent, cfg.UserAgent)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.BaseURL = "https://docs.example.com/book"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			modify:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing base URL",
			modify:  func(c *Config) { c.BaseURL = "" },
			wantErr: ErrNoBaseURL,
		},
		{
			name:    "relative base URL",
			modify:  func(c *Config) { c.BaseURL = "docs/book" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "non-http scheme",
			modify:  func(c *Config) { c.BaseURL = "ftp://example.com" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "zero workers",
			modify:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "negative delay",
			modify:  func(c *Config) { c.Delay = -time.Second },
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "malformed proxy",
			modify:  func(c *Config) { c.ProxyURL = "not a url" },
			wantErr: ErrInvalidProxyURL,
		},
		{
			name:    "empty output path",
			modify:  func(c *Config) { c.OutputPath = " " },
			wantErr: ErrNoOutputPath,
		},
		{
			name:    "valid proxy",
			modify:  func(c *Config) { c.ProxyURL = "http://proxy.example.com:8080" },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML config file loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads per-host overrides", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `
defaults:
  delaySeconds: 1.5
sites:
  docs.example.com:
    workers: 2
    userAgent: "custom-agent"
    headers:
      Authorization: "Bearer abc"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		site := cf.GetSiteConfig("docs.example.com")
		if site.DelaySeconds != 1.5 {
			t.Errorf("expected merged delay 1.5, got %v", site.DelaySeconds)
		}
		if site.Workers != 2 {
			t.Errorf("expected workers 2, got %d", site.Workers)
		}
		if site.UserAgent != "custom-agent" {
			t.Errorf("expected custom user agent, got %q", site.UserAgent)
		}
		if site.Headers["Authorization"] != "Bearer abc" {
			t.Errorf("expected Authorization header, got %v", site.Headers)
		}
	})

	t.Run("unknown host falls back to defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{DelaySeconds: 2.0},
			Sites:    map[string]SiteConfig{},
		}

		site := cf.GetSiteConfig("other.example.com")
		if site.DelaySeconds != 2.0 {
			t.Errorf("expected default delay 2.0, got %v", site.DelaySeconds)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

// TestFindConfigFile tests config file search behavior.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "myconfig.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

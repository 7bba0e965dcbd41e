package config

// SiteConfig holds per-host configuration overrides.
// This allows customizing crawl behavior for individual documentation sites
// without repeating CLI flags.
type SiteConfig struct {
	// DelaySeconds overrides the politeness delay for this host.
	// Zero means the global delay applies.
	DelaySeconds float64 `yaml:"delaySeconds,omitempty"`

	// Workers overrides the worker pool width for this host.
	Workers int `yaml:"workers,omitempty"`

	// Proxy overrides the forward proxy URL for this host.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent overrides the User-Agent header for this host.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are extra HTTP headers to include in requests to this host.
	// Useful for documentation sites behind basic auth or access tokens.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .gitbook2pdf configuration file.
type File struct {
	// Sites maps host names to their site-specific configurations.
	// Keys are bare hosts (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains configuration applied to all hosts unless
	// overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.DelaySeconds > 0 {
			result.DelaySeconds = siteConfig.DelaySeconds
		}
		if siteConfig.Workers > 0 {
			result.Workers = siteConfig.Workers
		}
		if siteConfig.Proxy != "" {
			result.Proxy = siteConfig.Proxy
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}

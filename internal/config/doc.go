// Package config manages configuration for gitbook2pdf.
//
// Configuration comes from two sources, merged in priority order:
//  1. CLI flags (highest priority)
//  2. An optional YAML configuration file (.gitbook2pdf) with global
//     defaults and per-host overrides
//
// The Config struct is populated once at startup, validated, and then passed
// to components via dependency injection. No package in this module reads
// configuration from global state.
//
// The YAML file is searched in the current directory and then the user's
// home directory, unless an explicit path is given. Per-host overrides allow
// tuning politeness and proxy settings for individual documentation sites:
//
//	defaults:
//	  delaySeconds: 1.0
//	sites:
//	  docs.example.com:
//	    delaySeconds: 2.5
//	    workers: 2
//	    headers:
//	      Authorization: "Bearer token"
package config

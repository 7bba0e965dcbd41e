package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoBaseURL is returned when no crawl root URL is specified.
	ErrNoBaseURL = errors.New("no URL specified: provide the documentation site root as a positional argument")

	// ErrInvalidBaseURL is returned when the crawl root is not an
	// absolute http or https URL.
	ErrInvalidBaseURL = errors.New("invalid URL: must be an absolute http or https URL")

	// ErrInvalidWorkers is returned when the worker pool width is below one.
	ErrInvalidWorkers = errors.New("invalid workers: must be at least 1")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidProxyURL is returned when the forward proxy URL cannot be
	// parsed. The proxy must include a scheme and a host.
	ErrInvalidProxyURL = errors.New("invalid proxy URL: must include scheme and host")

	// ErrNoOutputPath is returned when the PDF output path is empty.
	ErrNoOutputPath = errors.New("no output path specified")
)

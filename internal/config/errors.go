package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoTarget is returned when no URL to crawl was given.
	ErrNoTarget = errors.New("please provide URL from ck101")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when a thread or image batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMinSize is returned when the minimum image width or height is not positive.
	ErrInvalidMinSize = errors.New("invalid minimum image size: width and height must be positive")

	// ErrInvalidMaxAttempts is returned when the thread fetch attempt count is out of range.
	ErrInvalidMaxAttempts = errors.New("invalid attempts: must be between 1 and 10")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be absolute, e.g. http://ck101.com/")

	// ErrEmptyDomain is returned when no site domain is configured.
	ErrEmptyDomain = errors.New("invalid site domain: must not be empty")

	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("invalid output directory: must not be empty")

	// ErrInvalidLogFormat is returned for an unknown --log-format value.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text, json or pretty")
)

// Package config provides configuration structures and utilities for iloveck101.
// It defines the crawl settings (site, concurrency, image filter, output)
// together with their defaults, validation and the YAML config file loader.
package config

package config

import "errors"

var (
	// ErrNoSeedDomain is returned when no seed domain is provided
	ErrNoSeedDomain = errors.New("no seed domain provided")
	// ErrInvalidMaxPages is returned when max_pages is not greater than 0
	ErrInvalidMaxPages = errors.New("max_pages must be greater than 0")
	// ErrInvalidConcurrency is returned when concurrency is not greater than 0
	ErrInvalidConcurrency = errors.New("concurrency must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
)
